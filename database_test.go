/*
 * database_test.go, part of gopahdb.
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
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	theoreticalFile  = "test/theoretical.xml"
	experimentalFile = "test/experimental.xml"
)

//testOptions returns quiet options that cache into a fresh directory and skip the schema check.
func testOptions(Te *testing.T) *Options {
	Te.Helper()
	O := DefaultOptions()
	O.CacheDir(Te.TempDir())
	O.Check(false)
	O.Verbose(false)
	O.Workers(2)
	return O
}

func openTest(Te *testing.T, filename string) *DB {
	Te.Helper()
	db, err := Open(filename, testOptions(Te))
	require.NoError(Te, err)
	return db
}

func TestOpen(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	assert.Equal(Te, "theoretical", db.Type())
	assert.Equal(Te, "3.20", db.Version())
	assert.Equal(Te, "2022-11-07", db.Date())
	assert.Equal(Te, theoreticalFile, db.Filename())
	assert.True(Te, db.CheckVersion("3.20"))
	assert.False(Te, db.CheckVersion("3.10"))
	assert.True(Te, db.Theoretical())
	assert.False(Te, db.Experimental())
	assert.False(Te, db.Clusters())
	assert.Equal(Te, 5, db.Len())
	assert.Equal(Te, []int{18, 73, 74, 200, 601}, db.UIDs())
	assert.Equal(Te, "Test subset of the theoretical database", db.Ref().Comment)

	s := db.Ref().Species[18]
	assert.Equal(Te, "C6H6", s.Formula)
	assert.Equal(Te, 6, s.NC)
	assert.Equal(Te, "D6h", s.Symmetry)
	require.Len(Te, s.Transitions, 5)
	assert.Equal(Te, Mode{Frequency: 3068, Scale: 0.958, Intensity: 35.2, Symmetry: "E1u"}, s.Transitions[0])
	require.Len(Te, s.Geometry, 12)
	assert.Equal(Te, Atom{Position: 7, Type: 1, X: 2.48}, s.Geometry[6])
	assert.Equal(Te, -1, db.Ref().Species[601].Charge)
	assert.Empty(Te, db.Ref().Species[601].Geometry)

	u := db.UIDs()
	u[0] = 1
	assert.Equal(Te, 18, db.UIDs()[0], "UIDs must return a copy")
}

func TestOpenCache(Te *testing.T) {
	O := testOptions(Te)
	first, err := Open(theoreticalFile, O)
	require.NoError(Te, err)
	hash, err := hashFile(theoreticalFile)
	require.NoError(Te, err)
	cachename := filepath.Join(O.CacheDir(), hash+cacheSuffix)
	require.FileExists(Te, cachename)

	second, err := Open(theoreticalFile, O)
	require.NoError(Te, err)
	if diff := cmp.Diff(first.Ref(), second.Ref(), cmpopts.EquateEmpty()); diff != "" {
		Te.Errorf("database restored from cache differs (-parsed +cached):\n%s", diff)
	}

	//A damaged cache is replaced by a good one.
	require.NoError(Te, os.WriteFile(cachename, []byte("not zstd at all"), 0o644))
	third, err := Open(theoreticalFile, O)
	require.NoError(Te, err)
	assert.Equal(Te, 5, third.Len())
	var restored Database
	require.NoError(Te, readCache(cachename, &restored))
	assert.Equal(Te, first.UIDs(), restored.UIDs)
}

func TestOpenNoCache(Te *testing.T) {
	O := testOptions(Te)
	O.Cache(false)
	_, err := Open(theoreticalFile, O)
	require.NoError(Te, err)
	entries, err := os.ReadDir(O.CacheDir())
	require.NoError(Te, err)
	assert.Empty(Te, entries)
}

func TestOpenEnv(Te *testing.T) {
	Te.Setenv("AMESPAHDEFAULTDB", experimentalFile)
	db := openTest(Te, "")
	assert.True(Te, db.Experimental())
	assert.Equal(Te, []int{1001, 1002}, db.UIDs())

	Te.Setenv("AMESPAHDEFAULTDB", "")
	_, err := Open("", testOptions(Te))
	assert.True(Te, errors.Is(err, ErrNoDatabase), "got %v", err)

	_, err = Open("test/nothere.xml", testOptions(Te))
	assert.Error(Te, err)
}

func TestOpenMalformed(Te *testing.T) {
	dir := Te.TempDir()
	cases := map[string]string{
		"truncated.xml": `<pahdatabase database="theoretical"><species><specie uid="1"><formula>C6H6`,
		"noroot.xml":    `<?xml version="1.0"?><database></database>`,
		"badnumber.xml": `<pahdatabase database="theoretical"><species><specie uid="1"><n_c>six</n_c></specie></species></pahdatabase>`,
	}
	for name, content := range cases {
		p := filepath.Join(dir, name)
		require.NoError(Te, os.WriteFile(p, []byte(content), 0o644))
		_, err := Open(p, testOptions(Te))
		assert.Error(Te, err, name)
	}
}

func TestXMLRoundTrip(Te *testing.T) {
	for _, f := range []string{theoreticalFile, experimentalFile} {
		db := openTest(Te, f)
		var buf bytes.Buffer
		require.NoError(Te, WriteXML(&buf, db.Ref()))
		again, err := ParseXML(&buf, "roundtrip.xml")
		require.NoError(Te, err, f)
		assert.Equal(Te, "roundtrip.xml", again.Filename)
		if diff := cmp.Diff(db.Ref(), again, cmpopts.EquateEmpty(), cmpopts.IgnoreFields(Database{}, "Filename")); diff != "" {
			Te.Errorf("%s: written and parsed database differs:\n%s", f, diff)
		}
	}
}

func TestWriteFile(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	out := filepath.Join(Te.TempDir(), "copy.xml")
	require.NoError(Te, db.WriteFile(out))
	again := openTest(Te, out)
	assert.Equal(Te, db.UIDs(), again.UIDs())
	assert.Equal(Te, db.Ref().Species[200], again.Ref().Species[200])
}

//schemaServer serves body as the schema, with the given status.
func schemaServer(Te *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	Te.Cleanup(srv.Close)
	return srv
}

const (
	goodSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="pahdatabase"><xs:complexType/></xs:element>
</xs:schema>`
	otherSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="somethingelse"/>
</xs:schema>`
)

//withSchema returns the theoretical test database pointing to the schema at url.
func withSchema(Te *testing.T, url string) string {
	b, err := os.ReadFile(theoreticalFile)
	require.NoError(Te, err)
	loc := fmt.Sprintf(`<pahdatabase xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://www.astrochemistry.org/pahdb %s/schema.xsd"`, url)
	return strings.Replace(string(b), "<pahdatabase", loc, 1)
}

func TestSchemaCheck(Te *testing.T) {
	good := schemaServer(Te, http.StatusOK, goodSchema)
	_, err := parseXMLChecked(strings.NewReader(withSchema(Te, good.URL)), "good.xml", true, time.Second)
	assert.NoError(Te, err)

	other := schemaServer(Te, http.StatusOK, otherSchema)
	_, err = parseXMLChecked(strings.NewReader(withSchema(Te, other.URL)), "other.xml", true, time.Second)
	assert.True(Te, errors.Is(err, ErrSchema), "got %v", err)

	notxsd := schemaServer(Te, http.StatusOK, `<html><body>hi</body></html>`)
	_, err = parseXMLChecked(strings.NewReader(withSchema(Te, notxsd.URL)), "html.xml", true, time.Second)
	assert.True(Te, errors.Is(err, ErrSchema), "got %v", err)

	//A schema that can't be fetched doesn't stop the parsing.
	missing := schemaServer(Te, http.StatusNotFound, "")
	_, err = parseXMLChecked(strings.NewReader(withSchema(Te, missing.URL)), "missing.xml", true, time.Second)
	assert.NoError(Te, err)

	//Without the check, nothing is fetched.
	_, err = parseXMLChecked(strings.NewReader(withSchema(Te, other.URL)), "other.xml", false, time.Second)
	assert.NoError(Te, err)
}

func TestSchemaMissingUID(Te *testing.T) {
	doc := `<pahdatabase database="theoretical"><species><specie><formula>C6H6</formula></specie></species></pahdatabase>`
	_, err := parseXMLChecked(strings.NewReader(doc), "nouid.xml", true, time.Second)
	assert.True(Te, errors.Is(err, ErrSchema), "got %v", err)
}

func TestSchemaURL(Te *testing.T) {
	assert.Equal(Te, "", schemaURL(""))
	assert.Equal(Te, "http://a/b.xsd", schemaURL("http://a/b.xsd"))
	assert.Equal(Te, "http://a/b.xsd", schemaURL("http://ns  http://a/b.xsd"))
}

func TestSearch(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	cases := map[string][]int{
		"c<=20 neutral n=0":                            {18, 73},
		"C10H8":                                        {73, 74},
		"c10h8 c6h6":                                   {18, 73, 74},
		"cation or anion":                              {74, 601},
		"nitrogen":                                     {200},
		"uid=200":                                      {200},
		"c > 50":                                       {601},
		"symmetry=D2h":                                 {73, 74},
		"magnesium=0 wavenumber>1000 with intensity>20": {18, 73, 74, 200, 601},
		"wavenumber>1500 with intensity>100":           {74, 601},
		"(c<10 or c>50) and charge<=0":                 {18, 200, 601},
		"c<0":                                          nil,
		//Benzene has a line above 3000 and one above 50, but not a single line with both.
		"frequency>3000 intensity>50":                  {73, 601},
		"frequency>3000 and intensity>50":              {73, 601},
		"frequency>3000 with intensity>50":             {73, 601},
		"frequency>3000 or intensity>50":               {18, 73, 74, 200, 601},
	}
	for q, want := range cases {
		got, err := db.Search(q)
		require.NoError(Te, err, q)
		assert.Equal(Te, want, got, q)
	}
	got, err := db.Search("")
	assert.NoError(Te, err)
	assert.Nil(Te, got)
}

func TestSearchErrors(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	for _, q := range []string{"(c<20", "c<20)", "c <", "c 20", "wavenumber 1000", "wavenumber>1000 with", "and"} {
		_, err := db.Search(q)
		assert.Error(Te, err, q)
	}
}

func TestSplitQuery(Te *testing.T) {
	assert.Equal(Te, []string{"c", "<=", "20", "&&", "(", "h", "!=", "6", ")"}, splitQuery("c<=20&&(h!=6)"))
	assert.Equal(Te, []string{"neutral", "n", "=", "0"}, splitQuery("  neutral\tn=0 "))
}

func TestByUID(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	S := db.SpeciesByUID(73, 9999, 18, 73)
	assert.Equal(Te, []int{73, 18}, S.UIDs)
	assert.Len(Te, S.Records, 2)
	S.Records[73].Formula = "changed"
	assert.Equal(Te, "C10H8", db.Ref().Species[73].Formula, "records must be copies")
	assert.Equal(Te, db.UIDs(), db.SpeciesByUID().UIDs)

	T := db.TransitionsByUID(18)
	assert.Equal(Te, ZeroKelvin, T.Model.Type)
	assert.Equal(Te, "km/mol", T.Units.Ordinate.Str)
	T.Modes[18][0].Intensity = -1
	assert.Equal(Te, 35.2, db.Ref().Species[18].Transitions[0].Intensity)

	G := db.GeometryByUID(601, 74)
	assert.Equal(Te, []int{601, 74}, G.UIDs)
	assert.Empty(Te, G.Atoms[601])
	assert.Len(Te, G.Atoms[74], 18)

	_, err := db.LaboratoryByUID(18)
	assert.True(Te, errors.Is(err, ErrNotExperimental), "got %v", err)
}

func TestLaboratory(Te *testing.T) {
	db := openTest(Te, experimentalFile)
	L, err := db.LaboratoryByUID(1001)
	require.NoError(Te, err)
	assert.Equal(Te, LaboratoryModel, L.Model.Type)
	spec := L.Spectra[1001]
	require.Len(Te, spec.Frequency, 14)
	require.Len(Te, spec.Intensity, 14)
	assert.Equal(Te, 600.0, spec.Frequency[0])
	assert.Equal(Te, 3200.0, spec.Frequency[13])
	assert.Equal(Te, float64(float32(0.51)), spec.Intensity[5])
	assert.Equal(Te, float64(float32(0.01)), spec.Intensity[0])

	S := db.SpeciesByUID(1002, 1001)
	L2, err := S.Laboratory()
	require.NoError(Te, err)
	assert.Equal(Te, []int{1002, 1001}, L2.UIDs)

	S.SetDB(nil)
	_, err = S.Laboratory()
	assert.True(Te, errors.Is(err, ErrNoDB), "got %v", err)
}

func TestExtend(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	coronene := db.Ref().Species[601].Copy()
	coronene.Charge = 0
	benzene := db.Ref().Species[18].Copy()
	benzene.Formula = "C6H6 (replaced)"
	db.Extend(map[int]*Specie{9000: coronene, 18: benzene})
	assert.Equal(Te, []int{18, 73, 74, 200, 601, 9000}, db.UIDs())
	assert.Equal(Te, 9000, db.Ref().Species[9000].UID)
	assert.Equal(Te, "C6H6 (replaced)", db.Ref().Species[18].Formula)
	got, err := db.Search("c>50 neutral")
	require.NoError(Te, err)
	assert.Equal(Te, []int{9000}, got)
}

func TestSpecies(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	S := db.SpeciesByUID(18, 73, 74)
	assert.Equal(Te, []string{"Bauschlicher et al. 2010, ApJS, 189, 341"}, S.References()[18])
	assert.Empty(Te, S.References()[74])
	assert.Equal(Te, []Comment{{Type: "theoretical", Text: "Benzene, the smallest aromatic ring."}}, S.Comments()[18])

	S.Intersect(73, 74, 500)
	assert.Equal(Te, []int{73, 74}, S.UIDs)
	S.Intersect(500)
	assert.Equal(Te, []int{73, 74}, S.UIDs, "an empty intersection changes nothing")
	S.Difference(74)
	assert.Equal(Te, []int{73}, S.UIDs)
	assert.Len(Te, S.Records, 1)
	S.Difference(73)
	assert.Equal(Te, []int{73}, S.UIDs, "a difference can't remove everything")

	T := S.Transitions()
	assert.Equal(Te, []int{73}, T.UIDs)
	assert.Len(Te, T.Modes[73], 8)
	assert.Len(Te, S.Geometry().Atoms[73], 18)
	assert.Contains(Te, S.String(), "FORMULA:  C10H8")

	out := filepath.Join(Te.TempDir(), "species.tbl")
	require.NoError(Te, S.Write(out))
	assert.FileExists(Te, out)
}

func TestFormatFormula(Te *testing.T) {
	assert.Equal(Te, `C$_{\mathregular{24}}$H$_{\mathregular{12}}$$^{\mathregular{+}}$`, FormatFormula("C24H12+"))
	assert.Equal(Te, `C$_{\mathregular{10}}$H$_{\mathregular{8}}$$^{\mathregular{2+}}$`, FormatFormula("C10H8++"))
	assert.Equal(Te, `C$_{\mathregular{54}}$H$_{\mathregular{18}}$$^{\mathregular{-}}$`, FormatFormula("C54H18-"))
	assert.Equal(Te, `C$_{\mathregular{9}}$H$_{\mathregular{7}}$N`, FormatFormula("C9H7N"))
}

func TestErrors(Te *testing.T) {
	err := newError("boom", "file.xml", "inner", true, ErrSchema)
	err2 := errDecorate(err, "outer")
	var e Error
	require.True(Te, errors.As(err2, &e))
	assert.Contains(Te, e.Decorate(""), "inner")
	assert.True(Te, e.Critical())
	assert.Equal(Te, "file.xml", e.FileName())
	assert.True(Te, errors.Is(err2, ErrSchema))
	assert.Equal(Te, "pahdb file file.xml error: boom", err.Error())
	plain := errors.New("plain")
	assert.Equal(Te, plain, errDecorate(plain, "outer"))
	assert.Nil(Te, errDecorate(nil, "outer"))
}
