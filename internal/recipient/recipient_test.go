package recipient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  Kind
	}{
		{"bare ten digit number", "8136414177", KindPhone},
		{"eleven digit with country code", "18136414177", KindPhone},
		{"international format", "+18136414177", KindPhone},
		{"formatted number", "(813) 641-4177", KindPhone},
		{"hyphenated international", "+1-813-641-4177", KindPhone},
		{"plain email", "john@example.com", KindEmail},
		{"email with plus tag", "john+tag@example.co.uk", KindEmail},
		{"email with dots", "first.last@sub.example.org", KindEmail},
		{"bare name", "John", KindUnknown},
		{"short digits", "12345", KindUnknown},
		{"missing tld", "john@example", KindUnknown},
		{"missing local part", "@example.com", KindUnknown},
		{"mixed garbage", "john@813-641", KindUnknown},
		{"empty", "", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.token))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for _, token := range []string{"8136414177", "a@b.com", "John"} {
		first := Classify(token)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Classify(token))
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ten digit national", "8136414177", "+18136414177"},
		{"eleven digit with leading one", "18136414177", "+18136414177"},
		{"already international", "+18136414177", "+18136414177"},
		{"hyphenated international", "+1-813-641-4177", "+18136414177"},
		{"parenthesized", "(813) 641-4177", "+18136414177"},
		{"foreign international untouched", "+447911123456", "+447911123456"},
		{"too short returned best effort", "12345", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}
