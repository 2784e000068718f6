package payfast

import (
	"crypto/md5" //nolint:gosec // PayFast signs with MD5
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// param is one key/value pair in the order PayFast expects.
type param struct {
	key   string
	value string
}

// paramString joins non-empty values as key=urlencoded(value) pairs. Checkout
// forms omit blank fields, so they are left out of the signature too.
func paramString(params []param) string {
	return encodeParams(params, true)
}

// notificationString joins every received field as it arrived, blank ones
// included.
func notificationString(params []param) string {
	return encodeParams(params, false)
}

func encodeParams(params []param, skipEmpty bool) string {
	var sb strings.Builder
	for _, p := range params {
		v := p.value
		if skipEmpty {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(v))
	}
	return sb.String()
}

// sign computes the MD5 signature over params in the given order.
func sign(params []param, passphrase string) string {
	return signString(paramString(params), passphrase)
}

// signNotification computes the ITN signature over every received field.
func signNotification(params []param, passphrase string) string {
	return signString(notificationString(params), passphrase)
}

func signString(s, passphrase string) string {
	if passphrase != "" {
		if s != "" {
			s += "&"
		}
		s += "passphrase=" + url.QueryEscape(strings.TrimSpace(passphrase))
	}
	sum := md5.Sum([]byte(s)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// signSorted computes the API signature, where parameters are sorted by key
// and the passphrase takes part in the sort.
func signSorted(values map[string]string, passphrase string) string {
	all := make(map[string]string, len(values)+1)
	for k, v := range values {
		all[k] = v
	}
	if passphrase != "" {
		all["passphrase"] = passphrase
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make([]param, 0, len(keys))
	for _, k := range keys {
		params = append(params, param{key: k, value: all[k]})
	}
	return sign(params, "")
}

// parseOrdered decodes a form body keeping the order parameters arrived in.
func parseOrdered(body string) ([]param, error) {
	var params []param
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		params = append(params, param{key: key, value: value})
	}
	return params, nil
}
