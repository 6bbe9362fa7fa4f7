package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PolarWolf314/envseal/internal/configs"
	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	"github.com/PolarWolf314/envseal/internal/regionsync"
	"github.com/PolarWolf314/envseal/internal/secrets"
	"github.com/PolarWolf314/envseal/internal/store"
	"github.com/briandowns/spinner"
)

const testPassphrase = "battery staple"

const testDocument = `_configurations:
  variables: [myapp, staging]
  privateKeyPath: keys/app.key
  publicKeyPath: keys/app.pub
  aws:
    regions: [us-east-1, eu-west-1]
_values:
  - name: DB_PASS
    value: hunter2-but-longer
    type: SecureString
    overwrite: true
  - name: PORT
    value: ${PORT:-8080}
    type: String
    overwrite: true
`

// isolateEnv clears every setting read from the environment and returns a
// settings path inside a temp directory.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		configs.EnvFileName, configs.EnvFileNameV1, configs.EnvKeyName, configs.EnvPassphrase,
		configs.EnvPrivateKey, configs.EnvPublicKey, configs.EnvAWSProfile, configs.EnvAuditLog,
	} {
		t.Setenv(name, "")
	}
	t.Setenv("NO_COLOR", "1")
	return filepath.Join(t.TempDir(), "config.toml")
}

// setupProject generates a key pair through the CLI and writes the document
// next to it. It returns the settings path and the document path.
func setupProject(t *testing.T) (string, string) {
	t.Helper()
	settings := isolateEnv(t)
	t.Setenv(configs.EnvPassphrase, testPassphrase)

	dir := t.TempDir()
	stdout, _, err := runCLI("secrets", "keygen", "app", "--out", filepath.Join(dir, "keys"), "--bits", "2048", "--config", settings)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	if !strings.Contains(stdout, "Key pair generated") {
		t.Fatalf("unexpected keygen output: %s", stdout)
	}

	doc := filepath.Join(dir, "secrets.yaml")
	if err := os.WriteFile(doc, []byte(testDocument), 0600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return settings, doc
}

func TestSecretsLifecycle(t *testing.T) {
	settings, doc := setupProject(t)

	keyData, err := os.ReadFile(filepath.Join(filepath.Dir(doc), "keys", "app.key"))
	if err != nil {
		t.Fatalf("private key not written: %v", err)
	}
	pubData, err := os.ReadFile(filepath.Join(filepath.Dir(doc), "keys", "app.pub"))
	if err != nil {
		t.Fatalf("public key not written: %v", err)
	}
	if !secrets.HasKeyPair(string(keyData), string(pubData)) {
		t.Fatal("generated keys do not form a pair")
	}

	stdout, _, err := runCLI("secrets", "encrypt", doc, "--config", settings)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if !strings.Contains(stdout, "Encrypted 1 entries") {
		t.Errorf("unexpected encrypt output: %s", stdout)
	}

	raw, err := os.ReadFile(doc)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}
	if strings.Contains(string(raw), "hunter2-but-longer") || !strings.Contains(string(raw), secrets.Marker) {
		t.Fatalf("document was not encrypted:\n%s", raw)
	}

	stdout, _, err = runCLI("secrets", "decrypt", doc, "--format", "json", "--set", "PORT=9090", "--config", settings)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	var entries []entryView
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("decrypt output is not JSON: %v\n%s", err, stdout)
	}
	if len(entries) != 2 || entries[0].Value != "hunter2-but-longer" || entries[1].Value != "9090" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	stdout, _, err = runCLI("secrets", "decrypt", "--file", doc, "--config", settings)
	if err != nil {
		t.Fatalf("decrypt (env) failed: %v", err)
	}
	if !strings.Contains(stdout, `DB_PASS="hunter2-but-longer"`) || !strings.Contains(stdout, "PORT=8080") {
		t.Errorf("unexpected env output: %s", stdout)
	}

	stdout, _, err = runCLI("secrets", "decrypt", doc, "--redact", "--config", settings)
	if err != nil {
		t.Fatalf("decrypt (redact) failed: %v", err)
	}
	if strings.Contains(stdout, "hunter2-but-longer") {
		t.Errorf("redacted output leaks the secret: %s", stdout)
	}

	after, err := os.ReadFile(doc)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}
	if string(after) != string(raw) {
		t.Error("decrypt modified the document")
	}

	stdout, _, err = runCLI("secrets", "log", doc, "--operation", "encrypt", "--config", settings)
	if err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if !strings.Contains(stdout, "encrypt") || strings.Contains(stdout, "decrypt") {
		t.Errorf("unexpected log output: %s", stdout)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	settings, doc := setupProject(t)
	if _, _, err := runCLI("secrets", "encrypt", doc, "--config", settings); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	t.Setenv(configs.EnvPassphrase, "not the passphrase")
	stdout, _, err := runCLI("secrets", "decrypt", doc, "--config", settings)
	if !errors.Is(err, kerrors.ErrDecryption) {
		t.Fatalf("expected ErrDecryption, got %v", err)
	}
	var reported *ReportedError
	if !errors.As(err, &reported) {
		t.Errorf("expected the error to be reported, got %T", err)
	}
	if strings.Contains(stdout, "DB_PASS") {
		t.Errorf("no entries should be printed on failure: %s", stdout)
	}
}

func TestKeygenRefusesToOverwrite(t *testing.T) {
	settings, doc := setupProject(t)
	keys := filepath.Join(filepath.Dir(doc), "keys")

	_, _, err := runCLI("secrets", "keygen", "app", "--out", keys, "--bits", "2048", "--config", settings)
	if !errors.Is(err, kerrors.ErrKeyFileExists) {
		t.Fatalf("expected ErrKeyFileExists, got %v", err)
	}
}

func TestMissingDocument(t *testing.T) {
	settings := isolateEnv(t)

	_, _, err := runCLI("secrets", "encrypt", "--config", settings)
	if !errors.Is(err, kerrors.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestDocumentArgumentBeatsEnvironment(t *testing.T) {
	settings, doc := setupProject(t)
	t.Setenv(configs.EnvFileNameV1, filepath.Join(t.TempDir(), "missing.yaml"))

	stdout, _, err := runCLI("secrets", "encrypt", doc, "--config", settings)
	if err != nil {
		t.Fatalf("encrypt with an explicit document failed: %v", err)
	}
	if !strings.Contains(stdout, "Encrypted 1 entries") {
		t.Errorf("unexpected encrypt output: %s", stdout)
	}
}

func TestDecryptRejectsUnknownFormat(t *testing.T) {
	settings := isolateEnv(t)

	_, _, err := runCLI("secrets", "decrypt", "x.yaml", "--format", "xml", "--config", settings)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

type fakeRegionClient struct {
	region string
	fail   bool
	mu     *sync.Mutex
	seen   map[string][]store.Entry
}

func (c *fakeRegionClient) Sync(_ context.Context, entries []store.Entry) error {
	c.mu.Lock()
	c.seen[c.region] = entries
	c.mu.Unlock()
	if c.fail {
		return errors.New("access denied")
	}
	return nil
}

func useFakeRegions(t *testing.T, failing string) map[string][]store.Entry {
	t.Helper()
	var mu sync.Mutex
	seen := map[string][]store.Entry{}
	syncClientFactory = func(_ context.Context, region string, _ []string) (regionsync.Client, error) {
		return &fakeRegionClient{region: region, fail: region == failing, mu: &mu, seen: seen}, nil
	}
	t.Cleanup(func() { syncClientFactory = nil })
	return seen
}

func TestSync(t *testing.T) {
	settings, doc := setupProject(t)
	if _, _, err := runCLI("secrets", "encrypt", doc, "--config", settings); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	seen := useFakeRegions(t, "")

	stdout, _, err := runCLI("secrets", "sync", doc, "--set", "PORT=443", "--config", settings)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !strings.Contains(stdout, "Synced 2 entries to aws in 2 regions") {
		t.Errorf("unexpected sync output: %s", stdout)
	}
	for _, region := range []string{"us-east-1", "eu-west-1"} {
		entries := seen[region]
		if len(entries) != 2 {
			t.Fatalf("%s received %d entries", region, len(entries))
		}
		if entries[0].Value != "hunter2-but-longer" || entries[1].Value != "443" {
			t.Errorf("%s received unexpected values: %+v", region, entries)
		}
	}
}

func TestSyncRegionFailure(t *testing.T) {
	settings, doc := setupProject(t)
	seen := useFakeRegions(t, "eu-west-1")

	stdout, _, err := runCLI("secrets", "sync", doc, "--config", settings)
	if !errors.Is(err, kerrors.ErrSync) {
		t.Fatalf("expected ErrSync, got %v", err)
	}
	if !strings.Contains(stdout, "eu-west-1") {
		t.Errorf("failing region not reported: %s", stdout)
	}
	if len(seen) != 2 {
		t.Errorf("expected every region to be attempted, got %d", len(seen))
	}
}

func TestSyncUnknownProvider(t *testing.T) {
	settings, doc := setupProject(t)
	seen := useFakeRegions(t, "")

	stdout, _, err := runCLI("secrets", "sync", doc, "--provider", "vault", "--config", settings)
	if !errors.Is(err, kerrors.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if !strings.Contains(stdout, "Supported providers") {
		t.Errorf("unexpected output: %s", stdout)
	}
	if len(seen) != 0 {
		t.Error("no region should be contacted")
	}
}

func TestWriteEntriesYAML(t *testing.T) {
	var b strings.Builder
	overwrite := true
	err := writeEntries(&b, "yaml", []store.Entry{
		{Name: "B", Value: "2", Type: store.TypeString, Overwrite: &overwrite},
		{Name: "A", Value: "1", Type: store.TypeString},
	})
	if err != nil {
		t.Fatalf("writeEntries failed: %v", err)
	}
	out := b.String()
	if !strings.HasPrefix(out, "_values:") || strings.Index(out, "name: B") > strings.Index(out, "name: A") {
		t.Errorf("yaml output should keep document order:\n%s", out)
	}
}

func TestReportErrorSplitsWarningsFromFailures(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)

	warning := kerrors.Warnf(kerrors.ErrKeyNotResolved, "no private key defined")
	if err := reportError(s, warning); err != nil {
		t.Fatalf("a warning should not fail the command, got %v", err)
	}
	if !strings.Contains(s.FinalMSG, "no private key defined") {
		t.Errorf("warning not shown: %q", s.FinalMSG)
	}

	err := reportError(s, kerrors.ErrCorruptDocument)
	var reported *ReportedError
	if !errors.As(err, &reported) {
		t.Fatalf("expected a reported error, got %v", err)
	}
	if !strings.Contains(s.FinalMSG, "could not be parsed") {
		t.Errorf("error not shown: %q", s.FinalMSG)
	}
}
