/*
 * errors.go, part of gopahdb.
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
	"errors"
	"fmt"
)

//Sentinel errors. Errors returned by this package wrap these when applicable,
//so they can be tested with errors.Is.
var (
	ErrNoDatabase      = errors.New("DATABASE NOT FOUND: SET SYSTEM AMESPAHDEFAULTDB ENVIRONMENT VARIABLE")
	ErrNotExperimental = errors.New("EXPERIMENTAL DATABASE REQUIRED")
	ErrNotTheoretical  = errors.New("THEORETICAL DATABASE REQUIRED FOR EMISSION MODEL")
	ErrModelApplied    = errors.New("AN EMISSION MODEL HAS ALREADY BEEN APPLIED")
	ErrNoDB            = errors.New("DATABASE REQUIRED FOR EMISSION MODEL")
	ErrNoUncertainties = errors.New("UNCERTAINTIES REQUIRED FOR MCFIT")
	ErrGridMismatch    = errors.New("observation and spectrum grids differ in length")
	ErrBadUncertainty  = errors.New("UNCERTAINTIES MUST BE POSITIVE")
	ErrSchema          = errors.New("database does not conform to its schema")
)

//Error is the general structure for errors in this package. It fullfills PAHError and CriticalError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
	wrapped  error
}

func (err Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("pahdb error: %s", err.message)
	}
	return fmt.Sprintf("pahdb file %s error: %s", err.filename, err.message)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	//Even thought this method does not use a pointer as a receiver, and tries to alter the received,
	//it should work, since E.deco is a slice, and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file associated with the error, if any.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

//Unwrap returns the sentinel or underlying error, if any.
func (err Error) Unwrap() error { return err.wrapped }

//newError builds an Error for the given caller.
func newError(message, filename, caller string, critical bool, wrapped ...error) Error {
	e := Error{message: message, filename: filename, deco: []string{caller}, critical: critical}
	if len(wrapped) > 0 {
		e.wrapped = wrapped[0]
	}
	return e
}

//errDecorate is a helper function that decorates the error with the caller's name
//before returning it, if the error implements PAHError. Other errors are returned
//unchanged.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(PAHError); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}

const (
	UnableToOpen     = "Unable to open file"
	UnableToRead     = "Unable to read"
	MalformedXML     = "Malformed XML database"
	BadNumber        = "Unable to parse number"
	QueryNotUnderstd = "NOT UNDERSTOOD"
	ExpectOperator   = "EXPECTING OPERATOR"
	ExpectOperand    = "EXPECTING OPERAND"
	ExpectComparison = "EXPECTING COMPARISON"
	UnbalancedParen  = "UNBALANCED PARENTHESES"
	NoRootFound      = "Missing root element"
	EmptyGrid        = "Empty grid"
	CacheCorrupted   = "Corrupted cache file"
)
