// Package krb5sandbox provides an isolated Kerberos environment: a private
// krb5.conf per instance, mediated by a process-wide environment-variable
// stack so that concurrent sandboxes (and the host's own ambient Kerberos
// state) never trample each other. A private credential cache exists only
// when credentials are copied from an existing ccache; password and keytab
// credentials are held in memory by the logged-in client and no ccache
// file is written for them.
package krb5sandbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/keytab"

	"github.com/isometry/go-activedirectory/internal/obslog"
)

const (
	envConfig = "KRB5_CONFIG"
	envCcache = "KRB5CCNAME"
)

// Sandbox is one isolated Kerberos environment, bound to a home domain.
type Sandbox struct {
	homeDomain string
	tmpDir     string

	mu           sync.Mutex
	realmServers map[string][]string // realm -> materialized DC list
	configPath   string
	configGen    int
	ccachePath   string

	configFrame *frame
	ccacheFrame *frame

	principal string
	client    *client.Client // logged-in client backing binds and kpasswd

	// credential material retained so BindMaterial can hand internal/adldap
	// what it needs to build a fresh gssapi.GSSAPIClient per LDAP bind.
	password  string
	keytab    string
	fromCcache string
}

// New returns a Sandbox for homeDomain. tmpDir, if empty, defaults to
// os.TempDir().
func New(homeDomain, tmpDir string) *Sandbox {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Sandbox{
		homeDomain:   strings.ToUpper(homeDomain),
		tmpDir:       tmpDir,
		realmServers: make(map[string][]string),
	}
}

// ConfigPath returns the sandbox's current krb5.conf path, or "" if no
// config has been written yet.
func (s *Sandbox) ConfigPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configPath
}

// Client returns the logged-in Kerberos client backing the active
// principal, or nil if Acquire has not succeeded yet.
func (s *Sandbox) Client() *client.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// SetRealmServers materializes the DC list used for realm in this
// sandbox's krb5.conf, regenerating and re-activating the config file
// since Kerberos libraries may have cached the previous path.
func (s *Sandbox) SetRealmServers(realm string, servers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.realmServers[strings.ToUpper(realm)] = servers
	return s.regenerateConfigLocked()
}

func (s *Sandbox) regenerateConfigLocked() error {
	content, err := renderConfig(s.homeDomain, s.realmServers)
	if err != nil {
		return err
	}
	s.configGen++
	newPath := filepath.Join(s.tmpDir, fmt.Sprintf("krb5sandbox-%d-conf-%d", os.Getpid(), s.configGen))
	if err := writeFileAtomic(newPath, content); err != nil {
		return err
	}

	oldFrame := s.configFrame
	oldPath := s.configPath

	s.configFrame = activate(envConfig, newPath)
	s.configPath = newPath

	if oldFrame != nil {
		release(envConfig, oldFrame)
		os.Remove(oldPath)
	}
	return nil
}

// Acquire authenticates principal (user or user@REALM; REALM defaults to
// the home domain) with exactly one of password, keytab, or an existing
// system ccache to copy, and activates the result.
func (s *Sandbox) Acquire(principal, password, keytabPath, sourceCcache string) error {
	log := obslog.For("krb5sandbox")
	user, realm := splitPrincipal(principal, s.homeDomain)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.realmServers[realm]) == 0 {
		return fmt.Errorf("krb5sandbox: no DC list set for realm %s before acquiring credentials", realm)
	}
	if s.configPath == "" {
		if err := s.regenerateConfigLocked(); err != nil {
			return fmt.Errorf("krb5sandbox: initialize config: %w", err)
		}
	}

	if sourceCcache != "" {
		if err := s.activateCopiedCcacheLocked(sourceCcache); err != nil {
			return err
		}
		s.principal = principal
		s.fromCcache = s.ccachePath
		log.Debug("acquired credentials from existing ccache", "principal", principal, "source", sourceCcache)
		return nil
	}

	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("krb5sandbox: load krb5 config: %w", err)
	}

	var cl *client.Client
	switch {
	case keytabPath != "":
		kt, err := keytab.Load(keytabPath)
		if err != nil {
			return fmt.Errorf("krb5sandbox: load keytab: %w", err)
		}
		cl = client.NewWithKeytab(user, realm, kt, cfg, client.DisablePAFXFAST(true))
	case password != "":
		cl = client.NewWithPassword(user, realm, password, cfg, client.DisablePAFXFAST(true))
	default:
		return fmt.Errorf("krb5sandbox: acquire requires a password, keytab, or existing ccache")
	}

	if err := cl.Login(); err != nil {
		return fmt.Errorf("krb5sandbox: login failed for %s: %w", principal, err)
	}

	s.client = cl
	s.principal = principal
	s.password = password
	s.keytab = keytabPath
	log.Debug("acquired credentials", "principal", principal, "realm", realm)
	return nil
}

// Principal returns the currently-active principal (user or user@REALM),
// or "" if Acquire has not succeeded yet.
func (s *Sandbox) Principal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// BindMaterial returns the information internal/adldap/kerberos.go needs
// to construct a gssapi.GSSAPIClient scoped to this sandbox: the sandbox's
// own krb5.conf path, the user/realm split of the active principal, and
// whichever one credential source (ccache path, keytab path, or password)
// was used to Acquire it.
func (s *Sandbox) BindMaterial() (configPath, user, realm, ccachePath, keytabPath, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, realm = splitPrincipal(s.principal, s.homeDomain)
	return s.configPath, user, realm, s.fromCcache, s.keytab, s.password
}

// activateCopiedCcacheLocked copies an existing ccache into the sandbox's
// private path and activates KRB5CCNAME to point at the copy, mirroring
// the original's "copied from an existing system ccache" lifecycle.
func (s *Sandbox) activateCopiedCcacheLocked(sourceCcache string) error {
	if s.ccachePath == "" {
		s.ccachePath = filepath.Join(s.tmpDir, fmt.Sprintf("krb5sandbox-%d-ccache", os.Getpid()))
	}
	data, err := os.ReadFile(sourceCcache)
	if err != nil {
		return fmt.Errorf("krb5sandbox: copy ccache: %w", err)
	}
	if err := writeFileAtomic(s.ccachePath, string(data)); err != nil {
		return fmt.Errorf("krb5sandbox: copy ccache: %w", err)
	}
	s.ccacheFrame = activate(envCcache, s.ccachePath)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// Release tears down both stacks and unlinks both files.
func (s *Sandbox) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configFrame != nil {
		release(envConfig, s.configFrame)
		os.Remove(s.configPath)
		s.configFrame = nil
	}
	if s.ccacheFrame != nil {
		release(envCcache, s.ccacheFrame)
		os.Remove(s.ccachePath)
		s.ccacheFrame = nil
	}
	s.client = nil
	s.principal = ""
}

// OverrideRealmServers temporarily pins realm's DC list to a single server,
// used by set_password/change_password which must target a specific DC
// (typically the PDC emulator) and cannot take that argument directly.
func (s *Sandbox) OverrideRealmServers(realm, server string) error {
	return s.SetRealmServers(realm, []string{server})
}

// RefreshRealmServers re-materializes realm's DC list from servers (as
// found by the Locator) after a pinned-server operation completes.
func (s *Sandbox) RefreshRealmServers(realm string, servers []string) error {
	return s.SetRealmServers(realm, servers)
}

func splitPrincipal(principal, homeDomain string) (user, realm string) {
	if idx := strings.IndexByte(principal, '@'); idx >= 0 {
		return principal[:idx], strings.ToUpper(principal[idx+1:])
	}
	return principal, homeDomain
}
