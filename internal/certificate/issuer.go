// Package certificate derives completion certificates from the CompletionSet.
//
// Every completed module yields exactly one certificate keyed "cert-<moduleId>".
// The issue date is backdated by a random number of days and the serial is a
// random six-digit number. In derived mode both are re-rolled on every listing;
// in stable mode they are minted once and persisted so a certificate keeps its
// serial across sessions.
package certificate

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/secureaware/internal/catalog"
	"github.com/kingrea/secureaware/internal/kvstore"
)

const (
	// StoreKey holds minted serials and dates in stable mode.
	StoreKey = "issuedCertificates"
	// UnknownModuleName labels certificates whose module left the catalog.
	UnknownModuleName = "Unknown Module"

	idPrefix            = "cert-"
	serialPrefix        = "SEC-"
	serialMin           = 100000
	serialSpan          = 900000
	defaultBackdateDays = 30
)

// ErrNotFound is returned when no certificate matches an id.
var ErrNotFound = errors.New("certificate: not found")

// Certificate attests completion of one module.
type Certificate struct {
	ID                string    `json:"id"`
	ModuleID          string    `json:"moduleId"`
	ModuleName        string    `json:"moduleName"`
	IssueDate         time.Time `json:"issueDate"`
	CertificateNumber string    `json:"certificateNumber"`
}

// ModuleResolver looks modules up by id.
type ModuleResolver interface {
	Module(id string) (catalog.Module, error)
}

// RandomSource supplies uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

type issuedRecord struct {
	IssueDate         time.Time `json:"issueDate"`
	CertificateNumber string    `json:"certificateNumber"`
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(i *Issuer) {
		if clock != nil {
			i.clock = clock
		}
	}
}

// WithRandom injects the random source used for dates and serials.
func WithRandom(r RandomSource) Option {
	return func(i *Issuer) {
		if r != nil {
			i.rnd = r
		}
	}
}

// WithBackdateDays sets the exclusive upper bound of the random backdating.
// Zero disables backdating.
func WithBackdateDays(days int) Option {
	return func(i *Issuer) {
		if days >= 0 {
			i.backdateDays = days
		}
	}
}

// WithStableStore switches the issuer to stable mode, persisting minted
// certificates in kv.
func WithStableStore(kv kvstore.Store) Option {
	return func(i *Issuer) {
		i.kv = kv
	}
}

// WithLogger injects a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Issuer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Issuer turns completed module ids into certificates.
type Issuer struct {
	mu           sync.Mutex
	modules      ModuleResolver
	kv           kvstore.Store
	issued       map[string]issuedRecord
	clock        func() time.Time
	rnd          RandomSource
	backdateDays int
	logger       *zap.Logger
}

// NewIssuer builds an issuer over the catalog. In stable mode previously
// minted certificates are loaded; an unreadable record starts fresh.
func NewIssuer(modules ModuleResolver, opts ...Option) (*Issuer, error) {
	if modules == nil {
		return nil, fmt.Errorf("certificate: module resolver is required")
	}
	i := &Issuer{
		modules:      modules,
		issued:       map[string]issuedRecord{},
		clock:        time.Now,
		rnd:          globalRandom{},
		backdateDays: defaultBackdateDays,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	if i.kv != nil {
		if _, err := kvstore.GetJSON(i.kv, StoreKey, &i.issued); err != nil {
			i.logger.Warn("issued certificates unreadable, starting fresh", zap.Error(err))
			i.issued = map[string]issuedRecord{}
		}
		if i.issued == nil {
			i.issued = map[string]issuedRecord{}
		}
	}
	return i, nil
}

// Stable reports whether serials survive across listings.
func (i *Issuer) Stable() bool {
	return i.kv != nil
}

// IDFor returns the certificate id for a module.
func IDFor(moduleID string) string {
	return idPrefix + moduleID
}

// ModuleIDFor extracts the module id from a certificate id.
func ModuleIDFor(certificateID string) (string, bool) {
	if !strings.HasPrefix(certificateID, idPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(certificateID, idPrefix)
	return id, id != ""
}

// Issue mints the certificate for a newly completed module. In derived mode
// nothing is stored and the call only validates the id. A record that cannot
// be persisted is dropped again.
func (i *Issuer) Issue(moduleID string) (Certificate, error) {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return Certificate{}, fmt.Errorf("certificate: module id is required")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	rec, minted := i.record(moduleID)
	if minted {
		if err := i.persist(); err != nil {
			delete(i.issued, moduleID)
			return Certificate{}, err
		}
	}
	return i.build(moduleID, rec), nil
}

// List returns one certificate per completed id, newest issue date first.
// Ids missing from the catalog still produce a certificate named
// UnknownModuleName.
func (i *Issuer) List(completedIDs []string) []Certificate {
	i.mu.Lock()
	defer i.mu.Unlock()
	certs := make([]Certificate, 0, len(completedIDs))
	dirty := false
	for _, id := range completedIDs {
		rec, minted := i.record(id)
		dirty = dirty || minted
		certs = append(certs, i.build(id, rec))
	}
	if dirty {
		if err := i.persist(); err != nil {
			i.logger.Warn("issued certificates not persisted", zap.Error(err))
		}
	}
	sort.SliceStable(certs, func(a, b int) bool {
		return certs[a].IssueDate.After(certs[b].IssueDate)
	})
	return certs
}

// Find returns the certificate with the given id together with its module.
// It fails with ErrNotFound when the id is not backed by a completed module,
// and with catalog.ErrModuleNotFound when the module left the catalog.
func (i *Issuer) Find(completedIDs []string, certificateID string) (Certificate, catalog.Module, error) {
	moduleID, ok := ModuleIDFor(strings.TrimSpace(certificateID))
	if !ok {
		return Certificate{}, catalog.Module{}, fmt.Errorf("%w: %s", ErrNotFound, certificateID)
	}
	for _, cert := range i.List(completedIDs) {
		if cert.ID != certificateID {
			continue
		}
		mod, err := i.modules.Module(moduleID)
		if err != nil {
			return Certificate{}, catalog.Module{}, err
		}
		return cert, mod, nil
	}
	return Certificate{}, catalog.Module{}, fmt.Errorf("%w: %s", ErrNotFound, certificateID)
}

// Search keeps certificates whose module name contains query, ignoring case.
func Search(certs []Certificate, query string) []Certificate {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return certs
	}
	var out []Certificate
	for _, cert := range certs {
		if strings.Contains(strings.ToLower(cert.ModuleName), needle) {
			out = append(out, cert)
		}
	}
	return out
}

// record returns the serial and date for moduleID, minting them when needed.
// The bool reports whether a stable record was newly minted.
func (i *Issuer) record(moduleID string) (issuedRecord, bool) {
	if i.kv == nil {
		return i.mint(), false
	}
	if rec, ok := i.issued[moduleID]; ok {
		return rec, false
	}
	rec := i.mint()
	i.issued[moduleID] = rec
	return rec, true
}

func (i *Issuer) mint() issuedRecord {
	date := i.clock()
	if i.backdateDays > 0 {
		date = date.AddDate(0, 0, -i.rnd.IntN(i.backdateDays))
	}
	return issuedRecord{
		IssueDate:         date.UTC(),
		CertificateNumber: fmt.Sprintf("%s%d", serialPrefix, serialMin+i.rnd.IntN(serialSpan)),
	}
}

func (i *Issuer) build(moduleID string, rec issuedRecord) Certificate {
	name := UnknownModuleName
	if mod, err := i.modules.Module(moduleID); err == nil {
		name = mod.Title
	}
	return Certificate{
		ID:                IDFor(moduleID),
		ModuleID:          moduleID,
		ModuleName:        name,
		IssueDate:         rec.IssueDate,
		CertificateNumber: rec.CertificateNumber,
	}
}

func (i *Issuer) persist() error {
	if i.kv == nil {
		return nil
	}
	if err := kvstore.SetJSON(i.kv, StoreKey, i.issued); err != nil {
		return fmt.Errorf("certificate: persist: %w", err)
	}
	return nil
}
