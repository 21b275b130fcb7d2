package util

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestGenerateSlug_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("slug has requested length", prop.ForAll(
		func(length int) bool {
			return len(GenerateSlug(length)) == length
		},
		gen.IntRange(1, 64),
	))

	properties.Property("slug only contains URL-safe characters", prop.ForAll(
		func(length int) bool {
			slug := GenerateSlug(length)
			for _, c := range slug {
				if !strings.ContainsRune(slugAlphabet, c) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}

func TestGenerateSlug_DefaultLength(t *testing.T) {
	if got := len(GenerateSlug(0)); got != DefaultSlugLength {
		t.Errorf("GenerateSlug(0) length = %d, want %d", got, DefaultSlugLength)
	}
	if got := len(GenerateSlug(-3)); got != DefaultSlugLength {
		t.Errorf("GenerateSlug(-3) length = %d, want %d", got, DefaultSlugLength)
	}
}

func TestGenerateSlug_NoObviousRepeats(t *testing.T) {
	// 生成一批 slug，确认没有重复（8 字符 64 进制的生日碰撞概率可以忽略）
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		s := GenerateSlug(DefaultSlugLength)
		if seen[s] {
			t.Fatalf("duplicate slug generated: %s", s)
		}
		seen[s] = true
	}
}
