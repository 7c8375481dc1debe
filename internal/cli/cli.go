// Package cli implements the gxcert command: content identifiers and CAR
// archives for certificate documents, signing with a raw key and signer
// recovery.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/gaiax/go-gxcert/client"
	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/envelope"
	"github.com/gaiax/go-gxcert/internal/config"
	"github.com/gaiax/go-gxcert/principal/credential"
	"github.com/gaiax/go-gxcert/principal/secp256k1/signer"
	"github.com/gaiax/go-gxcert/record"
	"github.com/gaiax/go-gxcert/store"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
)

const (
	CommandCID             = "cid"
	CommandSignCertificate = "sign-certificate"
	CommandRecover         = "recover"
	CommandCAR             = "car"
)

// Config is read from the environment.
type Config struct {
	PrivateKey  string        `env:"GXCERT_PRIVATE_KEY"`
	Nonce       string        `env:"GXCERT_NONCE"`
	LogLevel    string        `env:"GXCERT_LOG_LEVEL" envDefault:"error"`
	CallTimeout time.Duration `env:"GXCERT_CALL_TIMEOUT" envDefault:"30s"`
	// StoreURL is the block endpoint certificates are uploaded to. Without
	// it they are only hashed in memory.
	StoreURL string `env:"GXCERT_STORE_URL"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Command is a parsed invocation.
type Command struct {
	Name  string
	Path  string
	Nonce string
}

// ParseCommand parses flags and the "<command> <file>" arguments.
func ParseCommand(fs *flag.FlagSet, args []string) (Command, error) {
	cmd := Command{}
	fs.StringVar(&cmd.Nonce, "nonce", "", "hex nonce to sign with, overrides GXCERT_NONCE")
	if err := fs.Parse(args); err != nil {
		return Command{}, err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return Command{}, fmt.Errorf("usage: gxcert [-nonce hex] %s|%s|%s|%s <file>", CommandCID, CommandCAR, CommandSignCertificate, CommandRecover)
	}
	cmd.Name, cmd.Path = rest[0], rest[1]
	switch cmd.Name {
	case CommandCID, CommandCAR, CommandSignCertificate, CommandRecover:
		return cmd, nil
	}
	return Command{}, fmt.Errorf("unknown command: %q", cmd.Name)
}

// Run executes cmd and writes its result to out.
func Run(ctx context.Context, cfg Config, cmd Command, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	lvl, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logging.SetAllLoggers(lvl)

	data, err := os.ReadFile(cmd.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", cmd.Path, err)
	}

	switch cmd.Name {
	case CommandCID:
		return printCID(data, out)
	case CommandCAR:
		return writeCAR(data, out)
	case CommandSignCertificate:
		return signCertificate(ctx, cfg, cmd, data, out)
	case CommandRecover:
		return recoverSigner(data, out)
	}
	return fmt.Errorf("unknown command: %q", cmd.Name)
}

func readCertificate(data []byte) (record.Certificate, error) {
	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return record.Certificate{}, failure.New(failure.InvalidRecordName, "the record is invalid: not JSON", err)
	}
	return record.ParseCertificate(obj)
}

func certificateBlock(data []byte) (store.Block, error) {
	cert, err := readCertificate(data)
	if err != nil {
		return nil, err
	}
	b, err := record.EncodeCertificate(cert)
	if err != nil {
		return nil, err
	}
	blk, err := store.NewBlock(b)
	if err != nil {
		return nil, fmt.Errorf("hashing certificate: %w", err)
	}
	return blk, nil
}

func printCID(data []byte, out io.Writer) error {
	blk, err := certificateBlock(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, blk.CID().String())
	return err
}

// writeCAR writes the encoded certificate as a single block CARv1 rooted at
// its CID, ready to be pinned by any IPFS node.
func writeCAR(data []byte, out io.Writer) error {
	blk, err := certificateBlock(data)
	if err != nil {
		return err
	}
	ms, err := store.NewMemoryStore(store.WithBlocks([]store.Block{blk}))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, store.ExportCAR([]cid.Cid{blk.CID()}, ms.Iterator())); err != nil {
		return fmt.Errorf("writing CAR: %w", err)
	}
	return nil
}

func signCertificate(ctx context.Context, cfg Config, cmd Command, data []byte, out io.Writer) error {
	cert, err := readCertificate(data)
	if err != nil {
		return err
	}
	if cfg.PrivateKey == "" {
		return failure.MissingCredential("GXCERT_PRIVATE_KEY is not set")
	}
	s, err := signer.Parse(cfg.PrivateKey)
	if err != nil {
		return failure.SigningFailed("loading GXCERT_PRIVATE_KEY", err)
	}

	var options []client.SignOption
	raw := cmd.Nonce
	if raw == "" {
		raw = cfg.Nonce
	}
	if raw != "" {
		n, err := nonce.Parse(raw)
		if err != nil {
			return err
		}
		options = append(options, client.WithNonce(n))
	}

	clientOptions := []client.Option{client.WithCallTimeout(cfg.CallTimeout)}
	if cfg.StoreURL != "" {
		endpoint, err := url.Parse(cfg.StoreURL)
		if err != nil {
			return fmt.Errorf("GXCERT_STORE_URL: %w", err)
		}
		clientOptions = append(clientOptions, client.WithStore(store.NewHTTPStore(endpoint)))
	}
	c, err := client.New(clientOptions...)
	if err != nil {
		return err
	}
	env, err := c.CreateCertificate(ctx, cert, credential.RawKey{Key: s.Raw()}, options...)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func recoverSigner(data []byte, out io.Writer) error {
	env, err := envelope.Unmarshal[json.RawMessage](data)
	if err != nil {
		return err
	}
	addr, err := env.Recover()
	if err != nil {
		return failure.New(failure.SigningFailedName, "recovering signer", err)
	}
	if env.Signer.Defined() && addr != env.Signer {
		return failure.SigningFailed(fmt.Sprintf("signature was made by %s, not %s", addr, env.Signer), nil)
	}
	_, err = fmt.Fprintln(out, addr.String())
	return err
}
