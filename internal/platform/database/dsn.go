package database

import (
	"fmt"
	"maps"
	"net"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// connectionKeys are carried by pgconn.Config fields rather than as params.
var connectionKeys = map[string]bool{
	"host": true, "port": true, "user": true, "password": true, "dbname": true, "database": true,
}

// AlternateDSN converts a postgres URL into keyword/value form and vice versa.
// Every parameter of the original DSN is carried over. sslmode defaults to
// require when the original does not set it.
func AlternateDSN(dsn string) (string, error) {
	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}

	var params map[string]string
	if isURLForm(dsn) {
		params, err = urlParams(dsn)
	} else {
		params, err = keywordParams(dsn)
	}
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	for k, v := range cfg.RuntimeParams {
		if _, ok := params[k]; !ok {
			params[k] = v
		}
	}
	if _, ok := params["sslmode"]; !ok {
		params["sslmode"] = "require"
	}

	hosts := targets(cfg)
	if isURLForm(dsn) {
		return keywordDSN(cfg, hosts, params), nil
	}
	return urlDSN(cfg, hosts, params), nil
}

type target struct {
	host string
	port uint16
}

// targets lists the distinct hosts pgconn will try, primary first. pgconn
// expands each host into TLS and plain fallbacks, so duplicates are dropped.
func targets(cfg *pgconn.Config) []target {
	out := []target{{host: cfg.Host, port: cfg.Port}}
	for _, fb := range cfg.Fallbacks {
		t := target{host: fb.Host, port: fb.Port}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func urlParams(dsn string) (map[string]string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	params := make(map[string]string)
	for k, vs := range u.Query() {
		if connectionKeys[k] || len(vs) == 0 {
			continue
		}
		params[k] = vs[0]
	}
	return params, nil
}

// keywordParams splits a libpq keyword/value string. Values may be single
// quoted, and a backslash escapes the next character.
func keywordParams(dsn string) (map[string]string, error) {
	params := make(map[string]string)
	s := strings.TrimSpace(dsn)
	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			return nil, fmt.Errorf("missing '=' after %q", s)
		}
		key := strings.TrimSpace(s[:eq])
		s = strings.TrimLeft(s[eq+1:], " \t\n")

		var b strings.Builder
		i := 0
		if strings.HasPrefix(s, "'") {
			i = 1
			closed := false
			for ; i < len(s); i++ {
				if s[i] == '\\' && i+1 < len(s) {
					i++
					b.WriteByte(s[i])
					continue
				}
				if s[i] == '\'' {
					closed = true
					i++
					break
				}
				b.WriteByte(s[i])
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted value for %q", key)
			}
		} else {
			for ; i < len(s) && !strings.ContainsRune(" \t\n", rune(s[i])); i++ {
				if s[i] == '\\' && i+1 < len(s) {
					i++
				}
				b.WriteByte(s[i])
			}
		}
		if !connectionKeys[key] {
			params[key] = b.String()
		}
		s = strings.TrimLeft(s[i:], " \t\n")
	}
	return params, nil
}

func isURLForm(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func keywordDSN(cfg *pgconn.Config, hosts []target, params map[string]string) string {
	hostList := make([]string, len(hosts))
	portList := make([]string, len(hosts))
	for i, t := range hosts {
		hostList[i] = t.host
		portList[i] = strconv.Itoa(int(t.port))
	}
	parts := []string{
		"host=" + quoteValue(strings.Join(hostList, ",")),
		"port=" + strings.Join(portList, ","),
	}
	if cfg.User != "" {
		parts = append(parts, "user="+quoteValue(cfg.User))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quoteValue(cfg.Password))
	}
	if cfg.Database != "" {
		parts = append(parts, "dbname="+quoteValue(cfg.Database))
	}
	for _, k := range sortedKeys(params) {
		parts = append(parts, k+"="+quoteValue(params[k]))
	}
	return strings.Join(parts, " ")
}

func urlDSN(cfg *pgconn.Config, hosts []target, params map[string]string) string {
	u := url.URL{
		Scheme: "postgres",
		Path:   "/" + cfg.Database,
	}
	hostPorts := make([]string, len(hosts))
	for i, t := range hosts {
		hostPorts[i] = net.JoinHostPort(t.host, strconv.Itoa(int(t.port)))
	}
	if strings.HasPrefix(hosts[0].host, "/") {
		// Unix socket directories cannot appear in the authority.
		params = maps.Clone(params)
		params["host"] = hosts[0].host
		params["port"] = strconv.Itoa(int(hosts[0].port))
	} else {
		u.Host = strings.Join(hostPorts, ",")
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	q := url.Values{}
	for _, k := range sortedKeys(params) {
		q.Set(k, params[k])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
