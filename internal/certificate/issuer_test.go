package certificate

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/secureaware/internal/catalog"
	"github.com/kingrea/secureaware/internal/kvstore"
)

var serialPattern = regexp.MustCompile(`^SEC-[1-9][0-9]{5}$`)

// scriptedRandom hands out a fixed sequence, clamped to each bound.
type scriptedRandom struct {
	values []int
	next   int
}

func (s *scriptedRandom) IntN(n int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

// toggleStore fails every write while failing is set.
type toggleStore struct {
	*kvstore.MemoryStore
	failing bool
}

func (s *toggleStore) Set(key string, value json.RawMessage) error {
	if s.failing {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(key, value)
}

func builtin(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Builtin()
	require.NoError(t, err)
	return cat
}

func TestListProducesOneCertificatePerCompletedModule(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	issuer, err := NewIssuer(builtin(t),
		WithClock(func() time.Time { return now }),
		WithRandom(rand.New(rand.NewPCG(1, 2))),
	)
	require.NoError(t, err)

	certs := issuer.List([]string{"password-security", "phishing-awareness", "gone-module"})
	require.Len(t, certs, 3)

	byID := map[string]Certificate{}
	for _, c := range certs {
		byID[c.ID] = c
		assert.Regexp(t, serialPattern, c.CertificateNumber)
		assert.False(t, c.IssueDate.After(now))
		assert.False(t, c.IssueDate.Before(now.AddDate(0, 0, -30)))
	}
	assert.Equal(t, "Password Security", byID["cert-password-security"].ModuleName)
	assert.Equal(t, "Phishing Awareness", byID["cert-phishing-awareness"].ModuleName)
	assert.Equal(t, UnknownModuleName, byID["cert-gone-module"].ModuleName)
	assert.Equal(t, "gone-module", byID["cert-gone-module"].ModuleID)

	for i := 1; i < len(certs); i++ {
		assert.False(t, certs[i].IssueDate.After(certs[i-1].IssueDate), "not sorted newest first")
	}
}

func TestListEmptyCompletionSet(t *testing.T) {
	issuer, err := NewIssuer(builtin(t))
	require.NoError(t, err)
	assert.Empty(t, issuer.List(nil))
}

func TestMintUsesBackdateAndSerialBounds(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	rnd := &scriptedRandom{values: []int{29, 899999, 0, 0}}
	issuer, err := NewIssuer(builtin(t), WithClock(func() time.Time { return now }), WithRandom(rnd))
	require.NoError(t, err)

	first, err := issuer.Issue("password-security")
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -29), first.IssueDate)
	assert.Equal(t, "SEC-999999", first.CertificateNumber)

	second, err := issuer.Issue("password-security")
	require.NoError(t, err)
	assert.Equal(t, now, second.IssueDate)
	assert.Equal(t, "SEC-100000", second.CertificateNumber)
}

func TestDerivedModeRerollsEachListing(t *testing.T) {
	rnd := &scriptedRandom{values: []int{1, 11, 2, 22}}
	issuer, err := NewIssuer(builtin(t), WithRandom(rnd))
	require.NoError(t, err)
	assert.False(t, issuer.Stable())

	a := issuer.List([]string{"password-security"})
	b := issuer.List([]string{"password-security"})
	assert.Equal(t, a[0].ID, b[0].ID)
	assert.NotEqual(t, a[0].CertificateNumber, b[0].CertificateNumber)
}

func TestStableModeKeepsSerialsAcrossInstances(t *testing.T) {
	kv, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cat := builtin(t)

	first, err := NewIssuer(cat, WithStableStore(kv), WithRandom(rand.New(rand.NewPCG(3, 4))))
	require.NoError(t, err)
	assert.True(t, first.Stable())
	issued, err := first.Issue("phishing-awareness")
	require.NoError(t, err)
	listed := first.List([]string{"phishing-awareness", "password-security"})
	require.Len(t, listed, 2)

	second, err := NewIssuer(cat, WithStableStore(kv), WithRandom(rand.New(rand.NewPCG(9, 9))))
	require.NoError(t, err)
	again := second.List([]string{"phishing-awareness", "password-security"})
	assert.Equal(t, listed, again)

	for _, c := range again {
		if c.ModuleID == "phishing-awareness" {
			assert.Equal(t, issued.CertificateNumber, c.CertificateNumber)
		}
	}
}

func TestStableModeIgnoresCorruptRecord(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(StoreKey, []byte("{broken")))
	issuer, err := NewIssuer(builtin(t), WithStableStore(kv))
	require.NoError(t, err)
	assert.Len(t, issuer.List([]string{"data-privacy"}), 1)
}

func TestIssueDropsRecordWhenPersistFails(t *testing.T) {
	kv := &toggleStore{MemoryStore: kvstore.NewMemoryStore(), failing: true}
	issuer, err := NewIssuer(builtin(t),
		WithStableStore(kv),
		WithRandom(rand.New(rand.NewPCG(3, 4))),
	)
	require.NoError(t, err)

	_, err = issuer.Issue("password-security")
	require.Error(t, err)

	kv.failing = false
	_, err = issuer.Issue("phishing-awareness")
	require.NoError(t, err)

	var persisted map[string]json.RawMessage
	found, err := kvstore.GetJSON(kv, StoreKey, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, persisted, "phishing-awareness")
	assert.NotContains(t, persisted, "password-security")
}

func TestIssueRequiresModuleID(t *testing.T) {
	issuer, err := NewIssuer(builtin(t))
	require.NoError(t, err)
	_, err = issuer.Issue("  ")
	assert.Error(t, err)
}

func TestNewIssuerRequiresResolver(t *testing.T) {
	_, err := NewIssuer(nil)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	issuer, err := NewIssuer(builtin(t))
	require.NoError(t, err)
	completed := []string{"password-security", "gone-module"}

	cert, mod, err := issuer.Find(completed, "cert-password-security")
	require.NoError(t, err)
	assert.Equal(t, "password-security", cert.ModuleID)
	assert.Equal(t, "Password Security", mod.Title)

	_, _, err = issuer.Find(completed, "cert-phishing-awareness")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = issuer.Find(completed, "nonsense")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = issuer.Find(completed, "cert-gone-module")
	assert.ErrorIs(t, err, catalog.ErrModuleNotFound)
}

func TestModuleIDFor(t *testing.T) {
	id, ok := ModuleIDFor("cert-wifi-security")
	assert.True(t, ok)
	assert.Equal(t, "wifi-security", id)

	_, ok = ModuleIDFor("cert-")
	assert.False(t, ok)
	_, ok = ModuleIDFor("wifi-security")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	certs := []Certificate{
		{ID: "cert-a", ModuleName: "Password Security"},
		{ID: "cert-b", ModuleName: "Phishing Awareness"},
		{ID: "cert-c", ModuleName: "Email Security"},
	}
	assert.Len(t, Search(certs, ""), 3)
	got := Search(certs, "SECURITY")
	require.Len(t, got, 2)
	assert.Equal(t, "cert-a", got[0].ID)
	assert.Empty(t, Search(certs, "quantum"))
}

func TestExportPDF(t *testing.T) {
	cat := builtin(t)
	mod, err := cat.Module("password-security")
	require.NoError(t, err)
	detail := Detail{
		Certificate: Certificate{
			ID:                "cert-password-security",
			ModuleID:          mod.ID,
			ModuleName:        mod.Title,
			IssueDate:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			CertificateNumber: "SEC-123456",
		},
		Module:    mod,
		Recipient: Recipient{Name: "Samar", Role: "Project Manager", Department: "IT"},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportPDF(&buf, detail))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	path := filepath.Join(t.TempDir(), FileName(detail.Certificate))
	require.NoError(t, ExportFile(path, detail))
	assert.FileExists(t, path)
	assert.Equal(t, "cert-password-security.pdf", FileName(detail.Certificate))
	assert.Equal(t, "May 1, 2024", FormatIssueDate(detail.Certificate))
}
