/*
 * schema.go, part of gopahdb.
 *
 *
 * Copyright 2021 Raul Mera rauldotmeraatusachdotcl
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 *
 */

package pahdb

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

//schemaURL extracts the document URL from an xsi:schemaLocation value,
//which is a list of namespace/URL pairs. The first URL is used.
func schemaURL(location string) string {
	f := strings.Fields(location)
	switch len(f) {
	case 0:
		return ""
	case 1:
		return f[0]
	}
	return f[1]
}

//checkSchema fetches the schema named in location and verifies that it
//declares the pahdatabase root element, and that no specie lacked its uid.
//Network problems and non-200 replies are only logged, and count as a pass.
func checkSchema(location string, noUID int, filename string, timeout time.Duration) error {
	if noUID > 0 {
		return newError(fmt.Sprintf("%d species without a uid attribute", noUID), filename, "checkSchema", true, ErrSchema)
	}
	url := schemaURL(location)
	if url == "" {
		return nil
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		log.Printf("Unable to fetch schema %s: %v. Skipping validation.", url, err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("Unable to fetch schema %s: %s. Skipping validation.", url, resp.Status)
		return nil
	}
	ok, err := declaresRoot(resp.Body, "pahdatabase")
	if err != nil {
		return newError(fmt.Sprintf("schema %s is not an XML Schema document: %v", url, err), filename, "checkSchema", true, ErrSchema)
	}
	if !ok {
		return newError(fmt.Sprintf("schema %s does not declare <pahdatabase>", url), filename, "checkSchema", true, ErrSchema)
	}
	return nil
}

//declaresRoot reads an XML Schema document and returns whether it declares
//an element called name.
func declaresRoot(r io.Reader, name string) (bool, error) {
	d := xml.NewDecoder(r)
	first := true
	found := false
	for {
		t, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, err
		}
		el, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		if first {
			if el.Name.Local != "schema" {
				return false, fmt.Errorf("root element is <%s>, not <schema>", el.Name.Local)
			}
			first = false
			continue
		}
		if el.Name.Local != "element" {
			continue
		}
		for _, a := range el.Attr {
			if a.Name.Local == "name" && a.Value == name {
				found = true
			}
		}
	}
	if first {
		return false, fmt.Errorf("empty document")
	}
	return found, nil
}
