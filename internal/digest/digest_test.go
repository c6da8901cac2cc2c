package digest

import (
	"strings"
	"testing"
)

func TestSumSHA256_KnownVectors(t *testing.T) {
	tests := map[string]string{
		"":    "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		"abc": "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		`{"a":1,"b":2,"c":[true,null,"x"]}`: "ee78b758140705c9412a940a152d297a342a670a702f44047a9baefea5579abb",
	}
	for in, want := range tests {
		if got := SumSHA256([]byte(in)).String(); got != want {
			t.Fatalf("sha256(%q) = %s, want %s", in, got, want)
		}
		got, err := Sum(SHA256, []byte(in))
		if err != nil || got.String() != want {
			t.Fatalf("Sum(sha256, %q) = %s, %v", in, got, err)
		}
	}
}

func TestSum_BLAKE3(t *testing.T) {
	got, err := Sum(BLAKE3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262" {
		t.Fatalf("blake3(\"\") = %s", got)
	}
	sha, _ := Sum(SHA256, []byte("x"))
	b3, _ := Sum(BLAKE3, []byte("x"))
	if sha == b3 {
		t.Fatalf("algorithms must produce different digests")
	}
}

func TestSum_FreshHasherPerCall(t *testing.T) {
	a, _ := Sum(SHA256, []byte("same"))
	_, _ = Sum(SHA256, []byte("other"))
	b, _ := Sum(SHA256, []byte("same"))
	if a != b {
		t.Fatalf("digest depends on earlier calls")
	}
}

func TestDigest_StringShape(t *testing.T) {
	s := SumSHA256([]byte("shape")).String()
	if len(s) != 64 {
		t.Fatalf("len = %d", len(s))
	}
	if strings.Trim(s, "0123456789abcdef") != "" {
		t.Fatalf("not lowercase hex: %s", s)
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
		ok   bool
	}{
		{"", SHA256, true},
		{"sha256", SHA256, true},
		{" SHA256 ", SHA256, true},
		{"blake3", BLAKE3, true},
		{"BLAKE3", BLAKE3, true},
		{"md5", "", false},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("ParseAlgorithm(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := Sum(Algorithm("md5"), nil); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}

func TestParse(t *testing.T) {
	d := SumSHA256([]byte("abc"))
	got, err := Parse(strings.ToUpper(d.String()))
	if err != nil || got != d {
		t.Fatalf("Parse round trip = %s, %v", got, err)
	}
	if _, err := Parse("abc"); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := Parse(strings.Repeat("zz", 32)); err == nil {
		t.Fatalf("expected hex error")
	}
}
