// Package keystore implements the auth.KeyLookup interface. This implements
// an in-memory keystore for JWT support.
package keystore

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
)

type key struct {
	privatePEM string
	publicPEM  string
}

// KeyStore represents an in memory store implementation of the
// KeyLookup interface for use with the auth package.
type KeyStore struct {
	store map[string]key
	mu    sync.RWMutex
}

// New constructs an empty KeyStore ready for use.
func New() *KeyStore {
	return &KeyStore{
		store: make(map[string]key),
	}
}

// LoadByFileSystem loads a set of RSA PEM files rooted inside of a directory.
// The name of each PEM file will be used as the key id. Returns the set of
// key ids that were loaded.
func (ks *KeyStore) LoadByFileSystem(fsys fs.FS) ([]string, error) {
	var kids []string

	fn := func(fileName string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if dirEntry.IsDir() {
			return nil
		}

		if path.Ext(fileName) != ".pem" {
			return nil
		}

		file, err := fsys.Open(fileName)
		if err != nil {
			return fmt.Errorf("opening key file: %w", err)
		}
		defer file.Close()

		pemData, err := io.ReadAll(io.LimitReader(file, 1024*1024))
		if err != nil {
			return fmt.Errorf("reading auth private key: %w", err)
		}

		kid := strings.TrimSuffix(dirEntry.Name(), ".pem")
		if err := ks.addPrivateKey(kid, string(pemData)); err != nil {
			return err
		}

		kids = append(kids, kid)

		return nil
	}

	if err := fs.WalkDir(fsys, ".", fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return kids, nil
}

// AddPrivateKey adds a private key PEM and its derived public key PEM to the
// store under the specified kid.
func (ks *KeyStore) AddPrivateKey(kid string, pemData string) error {
	return ks.addPrivateKey(kid, pemData)
}

// PrivateKey searches the key store for a given kid and returns the private
// key in PEM format.
func (ks *KeyStore) PrivateKey(kid string) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	k, found := ks.store[kid]
	if !found {
		return "", fmt.Errorf("kid %q lookup failed", kid)
	}

	return k.privatePEM, nil
}

// PublicKey searches the key store for a given kid and returns the public
// key in PEM format.
func (ks *KeyStore) PublicKey(kid string) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	k, found := ks.store[kid]
	if !found {
		return "", fmt.Errorf("kid %q lookup failed", kid)
	}

	return k.publicPEM, nil
}

func (ks *KeyStore) addPrivateKey(kid string, privatePEM string) error {
	block, _ := pem.Decode([]byte(privatePEM))
	if block == nil {
		return fmt.Errorf("kid %q: no pem block found", kid)
	}

	privateKey, err := parseRSAPrivateKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("kid %q: parsing private key: %w", kid, err)
	}

	asn1Bytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return fmt.Errorf("kid %q: marshaling public key: %w", kid, err)
	}

	publicBlock := pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: asn1Bytes,
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	ks.store[kid] = key{
		privatePEM: privatePEM,
		publicPEM:  string(pem.EncodeToMemory(&publicBlock)),
	}

	return nil
}

func parseRSAPrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, nil
	}

	k, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}

	rsaKey, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key is not an RSA private key")
	}

	return rsaKey, nil
}
