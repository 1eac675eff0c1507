package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/secureaware/internal/events"
	"github.com/kingrea/secureaware/internal/kvstore"
)

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func TestOpenDefaultsWhenMissing(t *testing.T) {
	s, err := Open(kvstore.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, Default(), s.Profile())
	assert.True(t, s.Profile().NotificationPreferences.SecurityAlerts)
}

func TestOpenDefaultsWhenCorrupt(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(StoreKey, []byte(`{"name":`)))
	s, err := Open(kv)
	require.NoError(t, err)
	assert.Equal(t, Default(), s.Profile())
}

func TestOpenDefaultsWhenRecordIncomplete(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "null", raw: `null`},
		{name: "empty object", raw: `{}`},
		{name: "name only", raw: `{"name":"x"}`},
		{name: "unknown department", raw: `{"name":"Dana","email":"dana@example.com","role":"Manager","department":"Legal"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kv := kvstore.NewMemoryStore()
			require.NoError(t, kv.Set(StoreKey, []byte(tc.raw)))
			s, err := Open(kv)
			require.NoError(t, err)
			assert.Equal(t, Default(), s.Profile())
		})
	}
}

func TestOpenKeepsValidRecord(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	raw := `{"name":" Dana ","email":"dana@example.com","role":"Manager","department":"Finance","notificationPreferences":{"securityAlerts":true}}`
	require.NoError(t, kv.Set(StoreKey, []byte(raw)))
	s, err := Open(kv)
	require.NoError(t, err)
	assert.Equal(t, "Dana", s.Profile().Name)
	assert.Equal(t, "Finance", s.Profile().Department)
	assert.True(t, s.Profile().NotificationPreferences.SecurityAlerts)
	assert.False(t, s.Profile().NotificationPreferences.NewModules)
}

func TestUpdateReplacesPersistsAndPublishes(t *testing.T) {
	kv, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	pub := &recordingPublisher{}
	s, err := Open(kv, WithPublisher(pub))
	require.NoError(t, err)

	next := Profile{
		Name:       " Dana ",
		Email:      "dana@example.com",
		Role:       "Manager",
		Department: "Finance",
		NotificationPreferences: Preferences{
			SecurityAlerts: true,
		},
	}
	require.NoError(t, s.Update(next))
	assert.Equal(t, "Dana", s.Profile().Name)
	assert.False(t, s.Profile().NotificationPreferences.ModuleReminders)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.ProfileUpdated, pub.events[0].Type)

	reopened, err := Open(kv)
	require.NoError(t, err)
	assert.Equal(t, s.Profile(), reopened.Profile())
}

func TestUpdateRejectsInvalidProfile(t *testing.T) {
	pub := &recordingPublisher{}
	s, err := Open(kvstore.NewMemoryStore(), WithPublisher(pub))
	require.NoError(t, err)

	err = s.Update(Profile{Name: "", Email: "not-an-email", Role: "Employee", Department: "Space"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Field("name"))
	assert.Equal(t, "must be a valid email address", verr.Field("email"))
	assert.Contains(t, verr.Field("department"), "Marketing")
	assert.Empty(t, verr.Field("role"))
	assert.Equal(t, Default(), s.Profile())
	assert.Empty(t, pub.events)
}

func TestDefaultProfileIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidatePasswordChange(t *testing.T) {
	tests := []struct {
		name string
		req  PasswordChange
		want map[string]string
	}{
		{
			name: "valid",
			req:  PasswordChange{CurrentPassword: "old", NewPassword: "longenough", ConfirmPassword: "longenough"},
		},
		{
			name: "all empty",
			req:  PasswordChange{},
			want: map[string]string{
				FieldCurrentPassword: "Current password is required",
				FieldNewPassword:     "New password is required",
			},
		},
		{
			name: "too short",
			req:  PasswordChange{CurrentPassword: "old", NewPassword: "short", ConfirmPassword: "short"},
			want: map[string]string{FieldNewPassword: "Password must be at least 8 characters"},
		},
		{
			name: "four emoji are four characters",
			req:  PasswordChange{CurrentPassword: "old", NewPassword: "🔒🔒🔒🔒", ConfirmPassword: "🔒🔒🔒🔒"},
			want: map[string]string{FieldNewPassword: "Password must be at least 8 characters"},
		},
		{
			name: "exactly eight",
			req:  PasswordChange{CurrentPassword: "old", NewPassword: "12345678", ConfirmPassword: "12345678"},
		},
		{
			name: "mismatch",
			req:  PasswordChange{CurrentPassword: "old", NewPassword: "longenough", ConfirmPassword: "different"},
			want: map[string]string{FieldConfirmPassword: "Passwords do not match"},
		},
		{
			name: "short and mismatched",
			req:  PasswordChange{NewPassword: "abc", ConfirmPassword: "abd"},
			want: map[string]string{
				FieldCurrentPassword: "Current password is required",
				FieldNewPassword:     "Password must be at least 8 characters",
				FieldConfirmPassword: "Passwords do not match",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidatePasswordChange(tt.req)
			if tt.want == nil {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, tt.want, verr.Fields)
		})
	}
}

func TestUpdatePasswordPublishesOnlyWhenValid(t *testing.T) {
	pub := &recordingPublisher{}
	s, err := Open(kvstore.NewMemoryStore(), WithPublisher(pub))
	require.NoError(t, err)

	err = s.UpdatePassword(PasswordChange{CurrentPassword: "old", NewPassword: "short", ConfirmPassword: "short"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, pub.events)

	require.NoError(t, s.UpdatePassword(PasswordChange{CurrentPassword: "old", NewPassword: "n3w-passphrase", ConfirmPassword: "n3w-passphrase"}))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.PasswordUpdated, pub.events[0].Type)
	assert.Equal(t, Default(), s.Profile())
}

func TestPreferencesToggle(t *testing.T) {
	p := Default().NotificationPreferences
	for _, key := range PreferenceKeys {
		require.True(t, p.Toggle(key))
		assert.False(t, p.Enabled(key), key)
	}
	assert.False(t, p.Toggle("unknown"))
	assert.False(t, p.Enabled("unknown"))
}
