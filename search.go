/*
 * search.go, part of gopahdb.
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
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

//The query language has a handful of word classes. Words are matched
//case-insensitively.
var (
	chargeWords = map[string]struct {
		op string
		v  float64
	}{
		"anion":    {"<", 0},
		"negative": {"<", 0},
		"cation":   {">", 0},
		"positive": {">", 0},
		"neutral":  {"==", 0},
		"-":        {"==", -1},
		"+":        {"==", 1},
		"++":       {"==", 2},
		"+++":      {"==", 3},
		"---":      {"==", -3},
	}

	//identity words and the XML tag of the property they refer to.
	identityWords = map[string]string{
		"uid":        "uid",
		"identifier": "uid",
		"hydrogen":   "n_h",
		"h":          "n_h",
		"carbon":     "n_c",
		"c":          "n_c",
		"nitrogen":   "n_n",
		"n":          "n_n",
		"oxygen":     "n_o",
		"o":          "n_o",
		"magnesium":  "n_mg",
		"mg":         "n_mg",
		"silicium":   "n_si",
		"si":         "n_si",
		"iron":       "n_fe",
		"fe":         "n_fe",
		"ch":         "n_ch",
		"ch2":        "n_ch2",
		"ch3":        "n_ch3",
		"chx":        "n_chx",
		"solo":       "n_solo",
		"duo":        "n_duo",
		"trio":       "n_trio",
		"quartet":    "n_quartet",
		"quintet":    "n_quintet",
		"charge":     "charge",
		"symmetry":   "symmetry",
		"weight":     "weight",
		"scale":      "scale",
		"energy":     "total_e",
		"zeropoint":  "vib_e",
		"experiment": "exp",
	}

	clusterWords = map[string]string{
		"monomers":     "monomers",
		"type":         "type",
		"conformation": "conformation",
	}

	composedWords = map[string]string{
		"wavenumber": "frequency",
		"frequency":  "frequency",
		"absorbance": "intensity",
		"intensity":  "intensity",
	}

	logicalWords = map[string]string{"and": "and", "&": "and", "&&": "and", "or": "or", "|": "or", "||": "or"}

	comparisonWords = map[string]string{
		"<": "<", "lt": "<",
		">": ">", "gt": ">",
		"=": "==", "==": "==", "eq": "==",
		"<=": "<=", "le": "<=",
		">=": ">=", "ge": ">=",
		"!=": "!=", "ne": "!=",
	}

	numericWord = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
	formulaWord = regexp.MustCompile(`(mg+|si+|fe+|[chno]+)([0-9]*)(mg+|si+|fe+|[chno]+)([0-9]*)(mg+|si+|fe+|[chno]*)([0-9]*)`)
)

//splitQuery breaks a query into words. Whitespace separates words, and the
//characters = < > & | ( ) ! are words by themselves, or combine into the
//two-character operators <= >= == && || !=.
func splitQuery(query string) []string {
	var words []string
	n := len(query)
	for i := 0; i < n; {
		c := query[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
			continue
		case strings.IndexByte("=<>()!", c) >= 0:
			w := string(c)
			i++
			if c != '(' && c != ')' && i < n && query[i] == '=' {
				w += "="
				i++
			}
			words = append(words, w)
		case c == '&' || c == '|':
			w := string(c)
			i++
			if i < n && query[i] == c {
				w += string(c)
				i++
			}
			words = append(words, w)
		default:
			j := i + 1
			for j < n && strings.IndexByte(" \t\n=<>&|()!", query[j]) < 0 {
				j++
			}
			words = append(words, query[i:j])
			i = j
		}
	}
	return words
}

//node is a predicate over a specie.
type node interface {
	eval(s *Specie) bool
}

type andNode struct{ a, b node }

func (n andNode) eval(s *Specie) bool { return n.a.eval(s) && n.b.eval(s) }

type orNode struct{ a, b node }

func (n orNode) eval(s *Specie) bool { return n.a.eval(s) || n.b.eval(s) }

func compare(a float64, op string, b float64) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	case "!=":
		return a != b
	}
	return a == b
}

func compareStrings(a, op, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	case "!=":
		return a != b
	}
	return a == b
}

//propertyNode compares a property with a value.
type propertyNode struct {
	tag   string
	op    string
	value float64
	str   string
	isStr bool
}

func (n propertyNode) eval(s *Specie) bool {
	if n.isStr {
		v, _ := s.text(n.tag)
		if n.op == "" {
			return v != ""
		}
		return compareStrings(v, n.op, n.str)
	}
	v, _ := s.numeric(n.tag)
	return compare(v, n.op, n.value)
}

type formulaNode struct{ formula string }

func (n formulaNode) eval(s *Specie) bool { return strings.EqualFold(s.Formula, n.formula) }

//transitionNode holds if any single transition fulfills all its conditions.
type transitionNode struct {
	conds []propertyNode
}

func (n transitionNode) eval(s *Specie) bool {
	for _, t := range s.Transitions {
		ok := true
		for _, c := range n.conds {
			v := t.Frequency
			if c.tag == "intensity" {
				v = t.Intensity
			}
			if !compare(v, c.op, c.value) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

//queryParser is a recursive descent parser over the words of a query.
type queryParser struct {
	words    []string
	pos      int
	clusters bool
}

func (p *queryParser) peek() string {
	if p.pos >= len(p.words) {
		return ""
	}
	return strings.ToLower(p.words[p.pos])
}

func (p *queryParser) next() string {
	w := p.peek()
	p.pos++
	return w
}

func (p *queryParser) fail(msg string) error {
	return newError(msg, "", "Search", false)
}

func (p *queryParser) identity(w string) (string, bool) {
	if tag, ok := identityWords[w]; ok {
		return tag, true
	}
	if p.clusters {
		tag, ok := clusterWords[w]
		return tag, ok
	}
	return "", false
}

//startsTerm returns true if w can begin a term.
func (p *queryParser) startsTerm(w string) bool {
	if w == "(" || formulaWord.MatchString(w) {
		return true
	}
	if _, ok := chargeWords[w]; ok {
		return true
	}
	if _, ok := p.identity(w); ok {
		return true
	}
	_, ok := composedWords[w]
	return ok
}

//expr := and {or and}
func (p *queryParser) expr() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for logicalWords[p.peek()] == "or" {
		p.next()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

//and := term {[and] term}
func (p *queryParser) and() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		w := p.peek()
		if logicalWords[w] == "and" {
			p.next()
		} else if w == "" || w == ")" || logicalWords[w] == "or" {
			return left, nil
		} else if !p.startsTerm(w) {
			return nil, p.unexpected(w)
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
}

func (p *queryParser) unexpected(w string) error {
	switch {
	case w == "":
		return p.fail(ExpectOperand)
	case w == ")":
		return p.fail(UnbalancedParen)
	case comparisonWords[w] != "":
		return p.fail(ExpectOperand)
	case logicalWords[w] != "" || w == "with":
		return p.fail(ExpectOperand)
	case numericWord.MatchString(w):
		return p.fail(ExpectOperator)
	}
	return p.fail(fmt.Sprintf("'%s' %s", p.words[p.pos], QueryNotUnderstd))
}

func (p *queryParser) term() (node, error) {
	w := p.peek()
	if w == "(" {
		p.next()
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, p.fail(UnbalancedParen)
		}
		return n, nil
	}
	if c, ok := chargeWords[w]; ok {
		p.next()
		return propertyNode{tag: "charge", op: c.op, value: c.v}, nil
	}
	if tag, ok := p.identity(w); ok {
		p.next()
		return p.property(tag)
	}
	if _, ok := composedWords[w]; ok {
		return p.transitions()
	}
	if formulaWord.MatchString(w) {
		p.next()
		var n node = formulaNode{w}
		for p.peek() != "" && formulaWord.MatchString(p.peek()) && !p.startsKeyword(p.peek()) {
			n = orNode{n, formulaNode{p.next()}}
		}
		return n, nil
	}
	return nil, p.unexpected(w)
}

//startsKeyword returns true if w is a word of any class other than formula.
func (p *queryParser) startsKeyword(w string) bool {
	if _, ok := p.identity(w); ok {
		return true
	}
	if _, ok := chargeWords[w]; ok {
		return true
	}
	if _, ok := composedWords[w]; ok {
		return true
	}
	return logicalWords[w] != "" || comparisonWords[w] != ""
}

//property parses the optional comparison after an identity.
func (p *queryParser) property(tag string) (node, error) {
	isStr := !isNumericTag(tag) && tag != "uid"
	op, ok := comparisonWords[p.peek()]
	if !ok {
		if isStr {
			return propertyNode{tag: tag, isStr: true}, nil
		}
		return propertyNode{tag: tag, op: ">", value: 0}, nil
	}
	p.next()
	v := p.peek()
	if v == "" {
		return nil, p.fail(ExpectOperand)
	}
	if isStr {
		if p.startsKeyword(v) || v == "(" || v == ")" {
			return nil, p.fail(ExpectOperand)
		}
		p.next()
		return propertyNode{tag: tag, op: op, str: v, isStr: true}, nil
	}
	if !numericWord.MatchString(v) {
		return nil, p.fail(ExpectOperand)
	}
	p.next()
	f, _ := strconv.ParseFloat(v, 64)
	return propertyNode{tag: tag, op: op, value: f}, nil
}

//transitions parses composed predicates that must hold for the same transition:
//composed comparison number {[with|and] composed comparison number}
func (p *queryParser) transitions() (node, error) {
	var n transitionNode
	for {
		tag := composedWords[p.next()]
		op, ok := comparisonWords[p.next()]
		if !ok {
			return nil, p.fail(ExpectComparison)
		}
		v := p.next()
		if !numericWord.MatchString(v) {
			return nil, p.fail(ExpectOperand)
		}
		f, _ := strconv.ParseFloat(v, 64)
		n.conds = append(n.conds, propertyNode{tag: tag, op: op, value: f})
		w := p.peek()
		if _, ok := composedWords[w]; ok {
			continue
		}
		if (w == "with" || logicalWords[w] == "and") && p.pos+1 < len(p.words) {
			if _, ok := composedWords[strings.ToLower(p.words[p.pos+1])]; ok {
				p.next()
				continue
			}
		}
		if w == "with" {
			return nil, p.fail(ExpectOperand)
		}
		return n, nil
	}
}

//parseQuery builds the predicate for query. clusters enables the words
//only valid for the clusters database.
func parseQuery(query string, clusters bool) (node, error) {
	p := &queryParser{words: splitQuery(query), clusters: clusters}
	if len(p.words) == 0 {
		return nil, nil
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.words) {
		return nil, p.unexpected(p.peek())
	}
	return n, nil
}

//Search returns the UIDs of the species matching query, in file order.
//An empty query returns nil and no error.
func (D *DB) Search(query string) ([]int, error) {
	n, err := parseQuery(query, D.Clusters())
	if err != nil {
		return nil, errDecorate(err, "Search")
	}
	if n == nil {
		return nil, nil
	}
	var r []int
	for _, uid := range D.db.UIDs {
		if n.eval(D.db.Species[uid]) {
			r = append(r, uid)
		}
	}
	message(D.opts.Verbose(), fmt.Sprintf("SEARCH RESULT: %d SPECIES FOUND", len(r)))
	return r, nil
}
