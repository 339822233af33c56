package lovdata

import (
	"net/url"
	"strings"
)

// DocumentURL maps a law base to its page on Lovdata:
//
//	LOV-1981-04-08-7    -> <site>/dokument/NL/lov/1981-04-08-7
//	FOR-2011-12-06-1357 -> <site>/dokument/NL/forskrift/2011-12-06-1357
//
// A base that does not have the TYPE-YYYY-MM-DD-N shape is used verbatim
// under lov/.
func DocumentURL(site, base string) string {
	docType := "lov"
	id := base

	if parts := strings.Split(base, "-"); len(parts) >= 4 {
		if strings.EqualFold(parts[0], "FOR") {
			docType = "forskrift"
		}
		id = strings.Join(parts[1:], "-")
	}
	return strings.TrimRight(site, "/") + "/dokument/NL/" + docType + "/" + url.PathEscape(id)
}

// SearchURL returns the Lovdata full-text search URL for query.
func SearchURL(site, query string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("type", "ALL")
	return strings.TrimRight(site, "/") + "/sok?" + v.Encode()
}

// absolute resolves a link found on a Lovdata page against site.
func absolute(site, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return strings.TrimRight(site, "/") + link
}
