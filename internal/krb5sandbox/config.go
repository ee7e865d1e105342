package krb5sandbox

import (
	"fmt"
	"os"
	"strings"
	"text/template"
)

const configTemplate = `[libdefaults]
  default_realm = {{.DefaultRealm}}
  dns_lookup_kdc = false
  default_tgs_enctypes = rc4-hmac
  default_tkt_enctypes = rc4-hmac
[realms]
{{range .Realms}}  {{.Name}} = {
{{range .KDCs}}    kdc = {{.}}:88
{{end}}{{range .KDCs}}    kpasswd_server = {{.}}:464
{{end}}  }
{{end}}`

var configTmpl = template.Must(template.New("krb5.conf").Parse(configTemplate))

type realmBlock struct {
	Name string
	KDCs []string
}

// renderConfig produces the krb5.conf content described in spec.md §6: one
// realm block per domain touched, each carrying its materialized DC list
// as kdc/kpasswd_server entries on ports 88/464.
func renderConfig(defaultRealm string, realmServers map[string][]string) (string, error) {
	realms := make([]realmBlock, 0, len(realmServers))
	for name, servers := range realmServers {
		realms = append(realms, realmBlock{Name: strings.ToUpper(name), KDCs: servers})
	}
	var b strings.Builder
	if err := configTmpl.Execute(&b, struct {
		DefaultRealm string
		Realms       []realmBlock
	}{DefaultRealm: strings.ToUpper(defaultRealm), Realms: realms}); err != nil {
		return "", fmt.Errorf("krb5sandbox: render config: %w", err)
	}
	return b.String(), nil
}

// writeFileAtomic writes content to path via "<path>.<pid>-tmp" + rename,
// the mkstemp-equivalent discipline spec.md §4.D/§5 requires.
func writeFileAtomic(path, content string) error {
	tmp := fmt.Sprintf("%s.%d-tmp", path, os.Getpid())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("krb5sandbox: create temp file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("krb5sandbox: write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("krb5sandbox: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("krb5sandbox: rename temp file: %w", err)
	}
	return nil
}
