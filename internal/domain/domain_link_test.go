package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		raw    string
		want   Answer
		wantOK bool
	}{
		{"accepted", AnswerAccepted, true},
		{"yes", AnswerAccepted, true},
		{"YES", AnswerAccepted, true},
		{"  Accepted\t", AnswerAccepted, true},
		{"rejected", AnswerRejected, true},
		{"no", AnswerRejected, true},
		{"No ", AnswerRejected, true},
		{"REJECTED", AnswerRejected, true},
		{"maybe", "", false},
		{"", "", false},
		{"yess", "", false},
		{"accepted!", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeAnswer(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeAnswerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// 归一化对大小写和首尾空白不敏感
	properties.Property("case and surrounding whitespace never change the outcome", prop.ForAll(
		func(raw string, pad string) bool {
			base, baseOK := NormalizeAnswer(raw)
			decorated, decoratedOK := NormalizeAnswer(pad + raw + pad)
			return base == decorated && baseOK == decoratedOK
		},
		gen.OneConstOf("accepted", "ACCEPTED", "Yes", "no", "Rejected", "maybe", ""),
		gen.OneConstOf("", " ", "\t", "  "),
	))

	// 归一化结果只会是枚举值之一
	properties.Property("accepted input always maps onto the enumeration", prop.ForAll(
		func(raw string) bool {
			a, ok := NormalizeAnswer(raw)
			if !ok {
				return a == ""
			}
			return a == AnswerAccepted || a == AnswerRejected
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestIsValidButtonStyle(t *testing.T) {
	assert.True(t, IsValidButtonStyle("standard"))
	assert.True(t, IsValidButtonStyle("persistent"))
	assert.True(t, IsValidButtonStyle("decoy"))
	assert.False(t, IsValidButtonStyle("Standard"))
	assert.False(t, IsValidButtonStyle(""))
	assert.False(t, IsValidButtonStyle("sparkly"))
}

func TestLinkIsAnswered(t *testing.T) {
	l := &Link{}
	assert.False(t, l.IsAnswered())

	at := l.CreatedAt
	l.AnsweredAt = &at
	assert.True(t, l.IsAnswered())
}
