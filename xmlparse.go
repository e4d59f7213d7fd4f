/*
 * xmlparse.go, part of gopahdb.
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
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

//The structures below are only used to decode the leaf-level elements of
//a specie with xml.Decoder.DecodeElement. Tags carry no namespace, so
//namespaced and plain files decode the same way.
type xmlComment struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

type xmlAtom struct {
	Position string `xml:"position"`
	Type     string `xml:"type"`
	X        string `xml:"x"`
	Y        string `xml:"y"`
	Z        string `xml:"z"`
}

type xmlMode struct {
	Frequency struct {
		Scale string `xml:"scale,attr"`
		Value string `xml:",chardata"`
	} `xml:"frequency"`
	Intensity string `xml:"intensity"`
	Symmetry  string `xml:"symmetry"`
}

type xmlLab struct {
	Frequency string `xml:"frequency"`
	Intensity string `xml:"intensity"`
}

//xmlParser streams a database file.
type xmlParser struct {
	d        *xml.Decoder
	filename string
	schema   string //the xsi:schemaLocation attribute, if any.
	noUID    int    //species without a uid attribute
}

//ParseXML reads a database from r. filename is only used in error messages.
func ParseXML(r io.Reader, filename string) (*Database, error) {
	p := &xmlParser{d: xml.NewDecoder(bufio.NewReader(r)), filename: filename}
	db, err := p.parse()
	if err != nil {
		return nil, errDecorate(err, "ParseXML")
	}
	return db, nil
}

//parseXMLChecked is ParseXML followed, if check is true, by the schema check.
func parseXMLChecked(r io.Reader, filename string, check bool, timeout time.Duration) (*Database, error) {
	p := &xmlParser{d: xml.NewDecoder(bufio.NewReader(r)), filename: filename}
	db, err := p.parse()
	if err != nil {
		return nil, errDecorate(err, "parseXMLChecked")
	}
	if check {
		if err := checkSchema(p.schema, p.noUID, filename, timeout); err != nil {
			return nil, errDecorate(err, "parseXMLChecked")
		}
	}
	return db, nil
}

func (p *xmlParser) parse() (*Database, error) {
	db := &Database{Filename: p.filename, Species: make(map[int]*Specie)}
	rooted := false
	for {
		t, err := p.d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newError(fmt.Sprintf("%s: %v", MalformedXML, err), p.filename, "parse", true)
		}
		switch el := t.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "pahdatabase":
				rooted = true
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "database":
						db.Type = a.Value
					case "version":
						db.Version = a.Value
					case "date":
						db.Date = a.Value
					case "full":
						db.Full, _ = strconv.ParseBool(a.Value)
					case "schemaLocation":
						p.schema = a.Value
					}
				}
			case "comment":
				var s string
				if err := p.d.DecodeElement(&s, &el); err != nil {
					return nil, newError(err.Error(), p.filename, "parse", true)
				}
				db.Comment = strings.TrimSpace(s)
			case "species":
				if err := p.species(db); err != nil {
					return nil, errDecorate(err, "parse")
				}
			}
		}
	}
	if !rooted {
		return nil, newError(NoRootFound+" <pahdatabase>", p.filename, "parse", true)
	}
	return db, nil
}

//species reads the <species> element, until its end.
func (p *xmlParser) species(db *Database) error {
	for {
		t, err := p.d.Token()
		if err != nil {
			return newError(fmt.Sprintf("%s: %v", MalformedXML, err), p.filename, "species", true)
		}
		switch el := t.(type) {
		case xml.StartElement:
			if el.Name.Local != "specie" {
				if err := p.d.Skip(); err != nil {
					return newError(err.Error(), p.filename, "species", true)
				}
				continue
			}
			uid := 0
			found := false
			for _, a := range el.Attr {
				if a.Name.Local == "uid" {
					found = true
					uid, err = strconv.Atoi(strings.TrimSpace(a.Value))
					if err != nil {
						return newError(fmt.Sprintf("%s: uid %q", BadNumber, a.Value), p.filename, "species", true)
					}
				}
			}
			if !found {
				p.noUID++
			}
			s, err := p.specie(uid)
			if err != nil {
				return errDecorate(err, "species")
			}
			if _, ok := db.Species[uid]; !ok {
				db.UIDs = append(db.UIDs, uid)
			}
			db.Species[uid] = s
		case xml.EndElement:
			if el.Name.Local == "species" {
				return nil
			}
		}
	}
}

//specie reads one <specie> element until its end.
func (p *xmlParser) specie(uid int) (*Specie, error) {
	s := &Specie{UID: uid}
	for {
		t, err := p.d.Token()
		if err != nil {
			return nil, newError(fmt.Sprintf("%s: %v", MalformedXML, err), p.filename, "specie", true)
		}
		switch el := t.(type) {
		case xml.EndElement:
			if el.Name.Local == "specie" {
				return s, nil
			}
		case xml.StartElement:
			tag := el.Name.Local
			switch tag {
			case "comments":
				err = p.list(&el, "comment", func(e *xml.StartElement) error {
					var c xmlComment
					if err := p.d.DecodeElement(&c, e); err != nil {
						return err
					}
					s.Comments = append(s.Comments, Comment{Type: c.Type, Text: strings.TrimSpace(c.Text)})
					return nil
				})
			case "references":
				err = p.list(&el, "reference", func(e *xml.StartElement) error {
					var r string
					if err := p.d.DecodeElement(&r, e); err != nil {
						return err
					}
					s.References = append(s.References, strings.TrimSpace(r))
					return nil
				})
			case "geometry":
				err = p.list(&el, "atom", func(e *xml.StartElement) error {
					var a xmlAtom
					if err := p.d.DecodeElement(&a, e); err != nil {
						return err
					}
					atom, err := a.atom()
					if err != nil {
						return err
					}
					s.Geometry = append(s.Geometry, atom)
					return nil
				})
			case "transitions":
				err = p.list(&el, "mode", func(e *xml.StartElement) error {
					var m xmlMode
					if err := p.d.DecodeElement(&m, e); err != nil {
						return err
					}
					mode, err := m.mode()
					if err != nil {
						return err
					}
					s.Transitions = append(s.Transitions, mode)
					return nil
				})
			case "laboratory":
				var l xmlLab
				if err = p.d.DecodeElement(&l, &el); err == nil {
					s.Laboratory, err = l.spectrum()
				}
			default:
				var v string
				if err = p.d.DecodeElement(&v, &el); err == nil {
					err = p.scalar(s, tag, strings.TrimSpace(v))
				}
			}
			if err != nil {
				return nil, newError(fmt.Sprintf("uid %d, <%s>: %v", uid, tag, err), p.filename, "specie", true)
			}
		}
	}
}

//list calls f for each child element called child of the element start,
//skipping any other children, until the end of start.
func (p *xmlParser) list(start *xml.StartElement, child string, f func(*xml.StartElement) error) error {
	for {
		t, err := p.d.Token()
		if err != nil {
			return err
		}
		switch el := t.(type) {
		case xml.StartElement:
			if el.Name.Local != child {
				if err := p.d.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := f(&el); err != nil {
				return err
			}
		case xml.EndElement:
			if el.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

//scalar sets the scalar property tag of s.
func (p *xmlParser) scalar(s *Specie, tag, value string) error {
	if isNumericTag(tag) {
		if value == "" {
			return nil
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s %q", BadNumber, value)
		}
		s.setNumeric(tag, v)
		return nil
	}
	s.setText(tag, value)
	return nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q", BadNumber, s)
	}
	return v, nil
}

func (a xmlAtom) atom() (Atom, error) {
	var r Atom
	var f [5]float64
	var err error
	for i, v := range []string{a.Position, a.Type, a.X, a.Y, a.Z} {
		if f[i], err = parseFloat(v); err != nil {
			return r, err
		}
	}
	r.Position = int(f[0])
	r.Type = int(f[1])
	r.X, r.Y, r.Z = f[2], f[3], f[4]
	return r, nil
}

func (m xmlMode) mode() (Mode, error) {
	var r Mode
	var err error
	if r.Frequency, err = parseFloat(m.Frequency.Value); err != nil {
		return r, err
	}
	if r.Scale, err = parseFloat(m.Frequency.Scale); err != nil {
		return r, err
	}
	if r.Intensity, err = parseFloat(m.Intensity); err != nil {
		return r, err
	}
	r.Symmetry = strings.TrimSpace(m.Symmetry)
	return r, nil
}

func (l xmlLab) spectrum() (LabSpectrum, error) {
	var r LabSpectrum
	var err error
	if r.Frequency, err = decodeFloat32s(l.Frequency); err != nil {
		return r, err
	}
	if r.Intensity, err = decodeFloat32s(l.Intensity); err != nil {
		return r, err
	}
	return r, nil
}

//decodeFloat32s decodes a base64 string holding little-endian float32 values.
func decodeFloat32s(s string) ([]float64, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("binary block of %d bytes is not a float32 array", len(b))
	}
	r := make([]float64, len(b)/4)
	for i := range r {
		r[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:])))
	}
	return r, nil
}

func encodeFloat32s(v []float64) string {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(float32(f)))
	}
	return base64.StdEncoding.EncodeToString(b)
}

//xmlWriter accumulates the first error, so WriteXML can check it only once.
type xmlWriter struct {
	w   *bufio.Writer
	err error
}

func (x *xmlWriter) printf(format string, a ...interface{}) {
	if x.err != nil {
		return
	}
	_, x.err = fmt.Fprintf(x.w, format, a...)
}

func esc(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

//WriteXML writes db to w in the same layout ParseXML reads.
func WriteXML(w io.Writer, db *Database) error {
	x := &xmlWriter{w: bufio.NewWriter(w)}
	x.printf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	x.printf("<pahdatabase database=%q version=%q date=%q full=%q>\n", esc(db.Type), esc(db.Version), esc(db.Date), strconv.FormatBool(db.Full))
	x.printf("  <comment>%s</comment>\n", esc(db.Comment))
	x.printf("  <species>\n")
	for _, uid := range db.UIDs {
		s, ok := db.Species[uid]
		if !ok {
			continue
		}
		x.printf("    <specie uid=\"%d\">\n", uid)
		for _, tag := range textTags {
			if v, _ := s.text(tag); v != "" {
				x.printf("      <%s>%s</%s>\n", tag, esc(v), tag)
			}
		}
		for _, tag := range numericTags {
			v, _ := s.numeric(tag)
			x.printf("      <%s>%s</%s>\n", tag, ftoa(v), tag)
		}
		for k, v := range s.Extra {
			x.printf("      <%s>%s</%s>\n", k, esc(v), k)
		}
		if len(s.Comments) > 0 {
			x.printf("      <comments>\n")
			for _, c := range s.Comments {
				if c.Type != "" {
					x.printf("        <comment type=%q>%s</comment>\n", esc(c.Type), esc(c.Text))
				} else {
					x.printf("        <comment>%s</comment>\n", esc(c.Text))
				}
			}
			x.printf("      </comments>\n")
		}
		if len(s.References) > 0 {
			x.printf("      <references>\n")
			for _, r := range s.References {
				x.printf("        <reference>%s</reference>\n", esc(r))
			}
			x.printf("      </references>\n")
		}
		if len(s.Geometry) > 0 {
			x.printf("      <geometry>\n")
			for _, a := range s.Geometry {
				x.printf("        <atom><position>%d</position><type>%d</type><x>%s</x><y>%s</y><z>%s</z></atom>\n",
					a.Position, a.Type, ftoa(a.X), ftoa(a.Y), ftoa(a.Z))
			}
			x.printf("      </geometry>\n")
		}
		if len(s.Transitions) > 0 {
			x.printf("      <transitions>\n")
			for _, m := range s.Transitions {
				x.printf("        <mode><frequency scale=\"%s\">%s</frequency><intensity>%s</intensity><symmetry>%s</symmetry></mode>\n",
					ftoa(m.Scale), ftoa(m.Frequency), ftoa(m.Intensity), esc(m.Symmetry))
			}
			x.printf("      </transitions>\n")
		}
		if len(s.Laboratory.Frequency) > 0 {
			x.printf("      <laboratory>\n        <frequency>%s</frequency>\n        <intensity>%s</intensity>\n      </laboratory>\n",
				encodeFloat32s(s.Laboratory.Frequency), encodeFloat32s(s.Laboratory.Intensity))
		}
		x.printf("    </specie>\n")
	}
	x.printf("  </species>\n</pahdatabase>\n")
	if x.err != nil {
		return x.err
	}
	return x.w.Flush()
}
