/*
 * ipac.go, part of gopahdb.
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

//Package ipac reads and writes the fixed-width ASCII tables used by the
//NASA/IPAC Infrared Science Archive.
//
//A table starts with keyword lines ("\KEY = value") and comment lines ("\ text"),
//followed by up to four header lines delimited by '|': column names, types,
//units and null values. Each following line is a row, with the values placed
//between the positions of the header bars.
package ipac

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

//Keyword is a "\KEY = value" line.
type Keyword struct {
	Key   string
	Value string
}

//Column is a column of a table. The values are stored as read/written.
type Column struct {
	Name string
	Type string //int, double, char...
	Unit string
	Data []string
}

//Table is an IPAC table.
type Table struct {
	Keywords []Keyword
	Comments []string
	Columns  []*Column
}

//AddKeyword appends a keyword.
func (T *Table) AddKeyword(key, value string) {
	T.Keywords = append(T.Keywords, Keyword{Key: key, Value: value})
}

//Keyword returns the value for key and true, or an empty string and false if absent.
func (T *Table) Keyword(key string) (string, bool) {
	for _, k := range T.Keywords {
		if strings.EqualFold(k.Key, key) {
			return k.Value, true
		}
	}
	return "", false
}

//AddFloats appends a column of doubles.
func (T *Table) AddFloats(name, unit string, v []float64) {
	c := &Column{Name: name, Type: "double", Unit: unit, Data: make([]string, len(v))}
	for i, f := range v {
		c.Data[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	T.Columns = append(T.Columns, c)
}

//AddInts appends a column of integers.
func (T *Table) AddInts(name, unit string, v []int) {
	c := &Column{Name: name, Type: "int", Unit: unit, Data: make([]string, len(v))}
	for i, n := range v {
		c.Data[i] = strconv.Itoa(n)
	}
	T.Columns = append(T.Columns, c)
}

//AddStrings appends a column of strings.
func (T *Table) AddStrings(name, unit string, v []string) {
	c := &Column{Name: name, Type: "char", Unit: unit, Data: append([]string(nil), v...)}
	T.Columns = append(T.Columns, c)
}

//Column returns the first column whose name matches one of names, ignoring case,
//or nil if there is none.
func (T *Table) Column(names ...string) *Column {
	for _, n := range names {
		for _, c := range T.Columns {
			if strings.EqualFold(c.Name, n) {
				return c
			}
		}
	}
	return nil
}

//Rows returns the number of rows of the table.
func (T *Table) Rows() int {
	if len(T.Columns) == 0 {
		return 0
	}
	return len(T.Columns[0].Data)
}

//Floats parses the values of the column as float64.
func (C *Column) Floats() ([]float64, error) {
	r := make([]float64, len(C.Data))
	for i, v := range C.Data {
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "nan") {
			r[i] = nan()
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, Error{fmt.Sprintf("column %s, row %d: %q is not a number", C.Name, i, v), "", []string{"Floats"}, true}
		}
		r[i] = f
	}
	return r, nil
}

//Ints parses the values of the column as int.
func (C *Column) Ints() ([]int, error) {
	r := make([]int, len(C.Data))
	for i, v := range C.Data {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, Error{fmt.Sprintf("column %s, row %d: %q is not an integer", C.Name, i, v), "", []string{"Ints"}, true}
		}
		r[i] = n
	}
	return r, nil
}

//widths returns the width of each column.
func (T *Table) widths() ([]int, error) {
	w := make([]int, len(T.Columns))
	rows := T.Rows()
	for i, c := range T.Columns {
		if len(c.Data) != rows {
			return nil, Error{fmt.Sprintf("column %s has %d rows, expected %d", c.Name, len(c.Data), rows), "", []string{"widths"}, true}
		}
		w[i] = max(len(c.Name), len(c.Type), len(c.Unit))
		for _, v := range c.Data {
			w[i] = max(w[i], len(v))
		}
		w[i]++
	}
	return w, nil
}

//Write writes the table to w.
func (T *Table) Write(w io.Writer) error {
	widths, err := T.widths()
	if err != nil {
		return errDecorate(err, "Write")
	}
	out := bufio.NewWriter(w)
	for _, k := range T.Keywords {
		fmt.Fprintf(out, "\\%s = %s\n", k.Key, k.Value)
	}
	for _, c := range T.Comments {
		fmt.Fprintf(out, "\\ %s\n", c)
	}
	header := func(f func(*Column) string) {
		out.WriteString("|")
		for i, c := range T.Columns {
			fmt.Fprintf(out, "%*s|", widths[i], f(c))
		}
		out.WriteString("\n")
	}
	header(func(c *Column) string { return c.Name })
	header(func(c *Column) string { return c.Type })
	header(func(c *Column) string { return c.Unit })
	for r := 0; r < T.Rows(); r++ {
		out.WriteString(" ")
		for i, c := range T.Columns {
			fmt.Fprintf(out, "%*s ", widths[i], c.Data[r])
		}
		out.WriteString("\n")
	}
	return out.Flush()
}

//WriteFile writes the table to the file filename.
func (T *Table) WriteFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return Error{err.Error(), filename, []string{"WriteFile"}, true}
	}
	if err := T.Write(f); err != nil {
		f.Close()
		return errDecorate(err, "WriteFile")
	}
	return f.Close()
}

//Read reads a table from r.
func Read(r io.Reader) (*Table, error) {
	T := new(Table)
	var bars []int
	headers := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.TrimSpace(line) == "":
			continue
		case strings.HasPrefix(line, "\\"):
			body := line[1:]
			if eq := strings.Index(body, "="); eq > 0 && !strings.HasPrefix(body, " ") {
				T.AddKeyword(strings.TrimSpace(body[:eq]), unquote(strings.TrimSpace(body[eq+1:])))
				continue
			}
			T.Comments = append(T.Comments, strings.TrimSpace(body))
		case strings.HasPrefix(line, "|"):
			fields := splitHeader(line)
			switch headers {
			case 0:
				bars = barPositions(line)
				if len(bars) < len(fields)+1 {
					bars = append(bars, len(line)+1<<20)
				}
				for _, name := range fields {
					T.Columns = append(T.Columns, &Column{Name: name})
				}
			case 1, 2:
				for i := range T.Columns {
					if i < len(fields) {
						if headers == 1 {
							T.Columns[i].Type = fields[i]
						} else {
							T.Columns[i].Unit = fields[i]
						}
					}
				}
			}
			headers++
		default:
			if headers == 0 {
				return nil, Error{"data row before the column header", "", []string{"Read"}, true}
			}
			for i, c := range T.Columns {
				c.Data = append(c.Data, cut(line, bars[i]+1, bars[i+1]))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, Error{err.Error(), "", []string{"Read"}, true}
	}
	if headers == 0 {
		return nil, Error{"no column header found", "", []string{"Read"}, true}
	}
	return T, nil
}

//ReadFile reads a table from the file filename.
func ReadFile(filename string) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{err.Error(), filename, []string{"ReadFile"}, true}
	}
	defer f.Close()
	T, err := Read(f)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = filename
			err = e
		}
		return nil, errDecorate(err, "ReadFile")
	}
	return T, nil
}

func barPositions(line string) []int {
	var r []int
	for i, c := range line {
		if c == '|' {
			r = append(r, i)
		}
	}
	return r
}

func splitHeader(line string) []string {
	f := strings.Split(strings.Trim(line, "|"), "|")
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	return f
}

//cut returns the trimmed substring line[from:to], clamped to the length of line.
func cut(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func nan() float64 {
	f, _ := strconv.ParseFloat("NaN", 64)
	return f
}

//Error is the error type for this package.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("ipac error: %s", err.message)
	}
	return fmt.Sprintf("ipac file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

func errDecorate(err error, caller string) error {
	if err2, ok := err.(Error); ok {
		err2.deco = append(err2.deco, caller)
		return err2
	}
	return err
}
