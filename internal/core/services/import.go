package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// Front matter keys read during import.
const (
	fmID            = "id"
	fmDocKey        = "doc_key"
	fmSemVer        = "semver"
	fmOwner         = "owner"
	fmContractType  = "contract_type"
	fmEffectiveDate = "effective_date"
)

// ImportService mints identities for documents found on disk.
type ImportService struct {
	scanner     driven.DocumentScanner
	minter      driving.Minter
	fingerprint driving.FingerprintUpdater
}

// NewImportService creates a new import service.
func NewImportService(
	scanner driven.DocumentScanner,
	minter driving.Minter,
	fingerprint driving.FingerprintUpdater,
) *ImportService {
	return &ImportService{
		scanner:     scanner,
		minter:      minter,
		fingerprint: fingerprint,
	}
}

// Import scans req.Root and mints every document without an id in its
// front matter, then records the fingerprint of the whole file.
// Per-document failures are reported in the items; only scan failures
// abort the run.
func (s *ImportService) Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportReport, error) {
	if s.scanner == nil || s.minter == nil || s.fingerprint == nil {
		return nil, errors.New("import service not configured")
	}
	if req.Root == "" {
		return nil, fmt.Errorf("%w: import root is required", domain.ErrInvalidInput)
	}
	patterns := req.Patterns
	if len(patterns) == 0 {
		patterns = req.Defaults.Patterns
	}
	if len(patterns) == 0 {
		patterns = domain.DefaultSettings().Import.Patterns
	}

	logger.Section("Import " + req.Root)
	report := &domain.ImportReport{}
	for doc, err := range s.scanner.Scan(ctx, req.Root, patterns) {
		if err != nil {
			return report, fmt.Errorf("scan %s: %w", req.Root, err)
		}
		item := s.importOne(ctx, doc, req)
		logger.Debug("%s: %s %s", item.Path, item.Outcome, item.DocKey)
		report.Items = append(report.Items, item)
	}
	return report, nil
}

func (s *ImportService) importOne(ctx context.Context, doc domain.SourceDocument, req domain.ImportRequest) domain.ImportItem {
	item := domain.ImportItem{Path: doc.Path}

	if id := frontMatterValue(doc, fmID); id != "" {
		item.ID = id
		item.DocKey = frontMatterValue(doc, fmDocKey)
		item.Outcome = domain.ImportSkipped
		return item
	}

	mint := mintRequestFor(doc, req.Defaults)
	item.DocKey = mint.DocKey
	if req.DryRun {
		item.Outcome = domain.ImportPlanned
		return item
	}

	card, err := s.minter.Mint(ctx, mint)
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		item.Outcome = domain.ImportDuplicate
		item.Err = err
		return item
	case card == nil:
		item.Outcome = domain.ImportFailed
		item.Err = err
		return item
	}
	item.ID = card.ID
	item.Outcome = domain.ImportMinted
	item.Err = err

	digest, err := s.fingerprint.UpdateFingerprint(ctx, card.ID, doc.Content)
	item.Fingerprint = digest
	item.Err = errors.Join(item.Err, err)
	return item
}

// mintRequestFor derives the mint inputs of a document: front matter
// first, then the import defaults. The key defaults to the upper-cased stem.
func mintRequestFor(doc domain.SourceDocument, defaults domain.ImportSettings) domain.MintRequest {
	key := frontMatterValue(doc, fmDocKey)
	if key == "" {
		stem := doc.Stem
		if stem == "" {
			stem = strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))
		}
		key = strings.ToUpper(stem)
	}
	return domain.MintRequest{
		DocKey:        key,
		SemVer:        firstNonEmpty(frontMatterValue(doc, fmSemVer), defaults.SemVer),
		Owner:         firstNonEmpty(frontMatterValue(doc, fmOwner), defaults.Owner),
		ContractType:  firstNonEmpty(frontMatterValue(doc, fmContractType), defaults.ContractType),
		EffectiveDate: frontMatterValue(doc, fmEffectiveDate),
	}
}

// frontMatterValue returns a scalar front matter value as a string.
// YAML decodes unquoted versions and dates as numbers or times.
func frontMatterValue(doc domain.SourceDocument, key string) string {
	v, ok := doc.FrontMatter[key]
	if !ok || v == nil {
		return ""
	}
	if s := doc.FrontMatterString(key); s != "" {
		return strings.TrimSpace(s)
	}
	switch t := v.(type) {
	case interface{ Format(string) string }:
		return t.Format(domain.EffectiveDateLayout)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
