package utils

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "keys", "server.key")
	if err := EnsureSelfSignedCert(cert, key, "ubigeo.local"); err != nil {
		t.Fatal(err)
	}
	if _, err := tls.LoadX509KeyPair(cert, key); err != nil {
		t.Fatalf("generated pair does not load: %v", err)
	}
	st, _ := os.Stat(cert)
	mod := st.ModTime()
	if err := EnsureSelfSignedCert(cert, key, "ubigeo.local"); err != nil {
		t.Fatal(err)
	}
	st2, _ := os.Stat(cert)
	if !st2.ModTime().Equal(mod) {
		t.Error("existing pair must be left untouched")
	}
}
