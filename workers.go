/*
 * workers.go, part of gopahdb.
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

type jobResult[T any] struct {
	val T
	err error
}

//parallel calls f(i) for every i in [0, n), on at most workers goroutines.
//The results come back in order of i. The first error found, in that order,
//is returned.
func parallel[T any](n, workers int, f func(i int) (T, error)) ([]T, error) {
	ret := make([]T, n)
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			v, err := f(i)
			if err != nil {
				return nil, err
			}
			ret[i] = v
		}
		return ret, nil
	}
	jobs := make(chan int, n)
	results := make([]chan jobResult[T], n)
	for i := range results {
		results[i] = make(chan jobResult[T], 1) //so workers never block on a result nobody reads yet
		jobs <- i
	}
	close(jobs)
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				v, err := f(i)
				results[i] <- jobResult[T]{v, err}
			}
		}()
	}
	var err error
	for i, c := range results {
		r := <-c
		if r.err != nil && err == nil {
			err = r.err
		}
		ret[i] = r.val
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}
