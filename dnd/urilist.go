package dnd

import (
	"bufio"
	"bytes"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Parses a text/uri-list into local file paths. Lines starting with '#' are
// comments. Only file:// uris are accepted.
func ParseURIList(data []byte) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := fileURIPath(line)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

func fileURIPath(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", errors.Errorf("unsupported uri scheme: %q", s)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", errors.Errorf("remote file uri: %q", s)
	}
	if u.Path == "" {
		return "", errors.Errorf("empty file path: %q", s)
	}
	return u.Path, nil
}
