package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MaxTables caps how many table links are generated in one call.
const MaxTables = 200

// TableLink is the customer menu address encoded in a table's QR code.
type TableLink struct {
	TableNumber int    `json:"tableNumber"`
	URL         string `json:"url"`
}

// TableLinks builds links for tables 1..count under baseURL.
func TableLinks(baseURL string, count int) ([]TableLink, error) {
	if count < 1 || count > MaxTables {
		return nil, validationError("count must be between 1 and %d", MaxTables)
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client base url %q is not an absolute url", baseURL)
	}

	links := make([]TableLink, 0, count)
	for table := 1; table <= count; table++ {
		u := *base
		u.Path = base.Path + "/menu"
		u.RawQuery = url.Values{"table": {strconv.Itoa(table)}}.Encode()
		links = append(links, TableLink{TableNumber: table, URL: u.String()})
	}
	return links, nil
}
