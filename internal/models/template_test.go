package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sas-panel/internal/common/errors"
)

func TestTemplate_Placeholders(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
		wantErr bool
	}{
		{name: "none", message: "Hello there", want: []string{}},
		{name: "one", message: "Hi $(first_name)!", want: []string{"first_name"}},
		{
			name:    "several in order",
			message: "$(first_name) $(last_name), call $(telephone)",
			want:    []string{"first_name", "last_name", "telephone"},
		},
		{name: "dollar without paren", message: "costs $5 (each)", want: []string{}},
		{name: "unterminated", message: "Hi $(first_name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := &Template{Message: tt.message}
			got, err := tpl.Placeholders()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTemplateMalformed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplate_Compile(t *testing.T) {
	r := &Recipient{ID: 7, FirstName: "Ada", LastName: "", Telephone: "+3861234", Address: "Main St 1"}

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "plain", message: "Hello", want: "Hello"},
		{name: "fills known fields", message: "Hi $(first_name), we will call $(telephone).", want: "Hi Ada, we will call +3861234."},
		{name: "id field", message: "#$(id)", want: "#7"},
		{name: "empty field left in place", message: "Dear $(last_name)", want: "Dear $(last_name)"},
		{name: "unknown field left in place", message: "$(nickname) at $(address)", want: "$(nickname) at Main St 1"},
		{name: "adjacent", message: "$(first_name)$(first_name)", want: "AdaAda"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := &Template{Message: tt.message}
			got, err := tpl.Compile(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplate_Validate(t *testing.T) {
	assert.NoError(t, (&Template{Message: "Hi $(first_name)"}).Validate())

	err := (&Template{Message: "Hi $(first_name"}).Validate()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRecord))
}

func TestRecipient_Validate(t *testing.T) {
	assert.NoError(t, (&Recipient{Telephone: "123"}).Validate())

	err := (&Recipient{FirstName: "Ada", Telephone: "   "}).Validate()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRecord))
}

func TestRecipient_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&Recipient{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&Recipient{FirstName: "Ada"}).FullName())
	assert.Equal(t, "", (&Recipient{}).FullName())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"template": KindTemplate, "Templates": KindTemplate,
		"people": KindRecipient, "recipient": KindRecipient,
		"rules": KindRule,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("users")
	assert.Error(t, err)
}

func TestNewRecord(t *testing.T) {
	for _, k := range Kinds() {
		r, err := NewRecord(k)
		require.NoError(t, err)
		assert.Equal(t, k, r.Kind())
		assert.Zero(t, r.RecordID())
	}
}
