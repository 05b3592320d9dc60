package utils

import "testing"

func TestNormalizeURL(t *testing.T) {
	normalized, domain, err := NormalizeURL("https://Example.com/path?utm_source=test&x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "example.com" {
		t.Fatalf("unexpected domain: %s", domain)
	}
	if normalized != "https://example.com/path?x=1" {
		t.Fatalf("unexpected normalized url: %s", normalized)
	}
}

func TestNormalizeURLDropsUserInfo(t *testing.T) {
	normalized, domain, err := NormalizeURL("https://discord.com@DLSCORD.gift/nitro#claim")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "dlscord.gift" {
		t.Fatalf("unexpected domain: %s", domain)
	}
	if normalized != "https://dlscord.gift/nitro" {
		t.Fatalf("unexpected normalized url: %s", normalized)
	}
}

func TestNormalizeURLMapsFullwidthHost(t *testing.T) {
	_, domain, err := NormalizeURL("https://ｄｌｓｃｏｒｄ.gift/nitro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "dlscord.gift" {
		t.Fatalf("expected fullwidth host mapped to ascii, got %s", domain)
	}
}

func TestExtractURLs(t *testing.T) {
	urls := ExtractURLs("see https://a.com/x and <HTTP://b.org> now")
	if len(urls) != 2 || urls[0] != "https://a.com/x" || urls[1] != "HTTP://b.org" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}
