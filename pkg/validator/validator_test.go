package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type listForm struct {
	Title     string `binding:"required,notblank"`
	Publicity string `binding:"oneofci=PUBLIC PRIVATE"`
}

func TestCustomValidator(t *testing.T) {
	binding.Validator = NewCustomValidator()
	RegisterCustom()

	tests := []struct {
		name string
		in   listForm
		ok   bool
	}{
		{"valid", listForm{Title: "friends", Publicity: "public"}, true},
		{"blank title", listForm{Title: "   "}, false},
		{"empty publicity", listForm{Title: "x"}, true},
		{"bad publicity", listForm{Title: "x", Publicity: "secret"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.NoError(t, binding.Validator.ValidateStruct("not a struct"))
}

func TestInstall_TranslatesWithJSONNames(t *testing.T) {
	uni, err := Install()
	if !assert.NoError(t, err) {
		return
	}

	type form struct {
		Title string `json:"title" binding:"required"`
	}
	err = binding.Validator.ValidateStruct(&form{})
	verrs, ok := err.(validator.ValidationErrors)
	if !assert.True(t, ok) {
		return
	}

	zhTrans, found := uni.GetTranslator("zh")
	assert.True(t, found)
	assert.Equal(t, "title", verrs[0].Field())
	assert.Contains(t, verrs[0].Translate(zhTrans), "title")
}
