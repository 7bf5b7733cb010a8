package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/note-feed-service/pkg/code"
)

func TestNote_Validate(t *testing.T) {
	tests := []struct {
		name string
		note Note
		want error
	}{
		{"public", Note{Visibility: VisibilityPublic}, nil},
		{"followers", Note{Visibility: VisibilityFollowers}, nil},
		{"direct with recipient", Note{Visibility: VisibilityDirect, SendTo: 9}, nil},
		{"direct without recipient", Note{Visibility: VisibilityDirect}, code.ErrorNoteDirectNeedsSendTo},
		{"home with recipient", Note{Visibility: VisibilityHome, SendTo: 9}, code.ErrorNoteSendToNotAllowed},
		{"unknown", Note{Visibility: "UNLISTED"}, code.ErrorNoteVisibilityInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.note.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, code.KindInvalidArgument, code.KindOf(err))
		})
	}
}

func TestParseVisibility(t *testing.T) {
	for _, v := range Visibilities() {
		got, err := ParseVisibility(" " + string(v) + " ")
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	got, err := ParseVisibility("followers")
	require.NoError(t, err)
	assert.Equal(t, VisibilityFollowers, got)

	_, err = ParseVisibility("friends")
	assert.ErrorIs(t, err, code.ErrorNoteVisibilityInvalid)
}

func TestParsePublicity(t *testing.T) {
	p, err := ParsePublicity("private")
	require.NoError(t, err)
	assert.Equal(t, PublicityPrivate, p)

	_, err = ParsePublicity("")
	assert.ErrorIs(t, err, code.ErrorListPublicityBad)
}
