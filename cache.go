/*
 * cache.go, part of gopahdb.
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
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

//cacheSuffix is appended to the hash of the source file to name cache files.
const cacheSuffix = ".pahdb.zst"

//hashFile returns the hex-encoded SHA-256 of the contents of filename.
func hashFile(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, bufio.NewReader(f)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

//hashValues returns the hex-encoded SHA-256 of the printed values. fmt prints
//maps sorted by key, so equal values always give the same hash.
func hashValues(values ...interface{}) (string, error) {
	h := sha256.New()
	for _, v := range values {
		if _, err := fmt.Fprintf(h, "%v\n", v); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

//writeCache gob-encodes v and writes it, zstd-compressed, to filename.
//The file is first written under a temporary name and then renamed, so
//a crash can't leave a half-written cache behind.
func writeCache(filename string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".pahdb-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //no-op after the rename
	zw, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		tmp.Close()
		return err
	}
	if err := gob.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		tmp.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

//readCache decodes the cache file filename into v.
//If the file can't be decoded, it is removed and an error is returned.
//A missing file returns an error satisfying os.IsNotExist.
func readCache(filename string, v interface{}) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	zr, err := zstd.NewReader(bufio.NewReader(f))
	if err == nil {
		err = gob.NewDecoder(zr).Decode(v)
		zr.Close()
	}
	f.Close()
	if err != nil {
		log.Printf("%s %s: %v. Removing it.", CacheCorrupted, filename, err)
		if rerr := os.Remove(filename); rerr != nil {
			log.Printf("Unable to remove %s: %v", filename, rerr)
		}
		return newError(fmt.Sprintf("%s: %v", CacheCorrupted, err), filename, "readCache", false)
	}
	return nil
}
