package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Title    string `validate:"required,min=3,max=255"`
	ImageURL string `validate:"omitempty,url"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(&sampleInput{Title: "old clock"}))
	require.Error(t, ValidateStruct(&sampleInput{}))
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&sampleInput{Title: "ok", ImageURL: "not a url"})
	require.Error(t, err)

	details := GetValidationErrors(err)
	require.Len(t, details, 2)
	require.Equal(t, "title", details[0].Field)
	require.Equal(t, "min", details[0].Tag)
	require.Equal(t, "imageurl", details[1].Field)
	require.Equal(t, "url", details[1].Tag)
}

func TestValidationMessage(t *testing.T) {
	err := ValidateStruct(&sampleInput{})
	require.Error(t, err)
	require.Equal(t, "Title is required", ValidationMessage(err))

	err = ValidateStruct(&sampleInput{Title: "ok", ImageURL: "not a url"})
	require.Error(t, err)
	require.Equal(t,
		"Title must be at least 3 characters; ImageURL must be a valid URL",
		ValidationMessage(err))
}
