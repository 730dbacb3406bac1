package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskEmailAddress(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"not-an-email":           "***",
		"ab@school.edu":          "a***@school.edu",
		" Maria.Santos@UNI.EDU ": "m***s@uni.edu",
	}
	for input, expected := range cases {
		require.Equal(t, expected, maskEmailAddress(input), input)
	}
}
