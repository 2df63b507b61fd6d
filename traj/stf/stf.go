/*
 * stf.go, part of slikmc.
 *
 * Copyright 2026 The slikmc authors
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
 */

package stf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	chem "github.com/loopkin/slikmc"
	v3 "github.com/loopkin/slikmc/v3"
)

//DefaultPrec is the precision used when none is given: coordinates are stored with 0.01 A resolution.
const DefaultPrec = 2

var (
	_ chem.TrajWriter = (*StfW)(nil)
	_ chem.Traj       = (*StfR)(nil)
)

//StfW writes stf trajectories. It implements chem.TrajWriter.
type StfW struct {
	f         *os.File
	h         *zstd.Encoder
	w         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	mult      float64
}

//NewWriter creates the file name and writes the header, with the given keys, and the number of atoms.
//The precision is taken from the "prec" key, if present.
func NewWriter(name string, natoms int, header map[string]string) (*StfW, error) {
	S := &StfW{natoms: natoms, filename: name}
	prec := DefaultPrec
	if p, ok := header["prec"]; ok {
		pr, err := strconv.Atoi(p)
		if err != nil || pr <= 0 {
			return nil, Error{fmt.Sprintf("Invalid precision %q", p), name, []string{"NewWriter"}, false}
		}
		prec = pr
	}
	S.mult = math.Pow(10, float64(prec))
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, false}
	}
	S.h, err = zstd.NewWriter(S.f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't start the compressor: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.w = bufio.NewWriter(S.h)
	//map order is random, and we want reproducible files.
	keys := make([]string, 0, len(header)+1)
	for k := range header {
		if k != "prec" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fmt.Fprintf(S.w, "prec=%d\n", prec)
	for _, k := range keys {
		fmt.Fprintf(S.w, "%s=%s\n", k, header[k])
	}
	fmt.Fprintf(S.w, "** %d\n", natoms)
	S.writeable = true
	return S, nil
}

//Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

//WNext writes a frame.
func (S *StfW) WNext(coord *v3.Matrix) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, false}
	}
	if coord.NVecs() != S.natoms {
		return Error{fmt.Sprintf("%s: %d atoms in a frame of %d", WrongFormat, coord.NVecs(), S.natoms), S.filename, []string{"WNext"}, false}
	}
	for i := 0; i < S.natoms; i++ {
		v := coord.Vec(i)
		_, err := fmt.Fprintf(S.w, "%d %d %d\n", int(math.RoundToEven(v.X*S.mult)), int(math.RoundToEven(v.Y*S.mult)), int(math.RoundToEven(v.Z*S.mult)))
		if err != nil {
			return Error{err.Error(), S.filename, []string{"WNext"}, true}
		}
	}
	if _, err := S.w.WriteString("*\n"); err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

//Close flushes the buffers and closes the file.
func (S *StfW) Close() {
	if S == nil || !S.writeable {
		return
	}
	S.w.Flush()
	S.h.Close()
	S.f.Close()
	S.writeable = false
}

//StfR reads stf trajectories. It implements chem.Traj.
type StfR struct {
	f        *os.File
	dec      *zstd.Decoder
	h        *bufio.Reader
	natoms   int
	filename string
	mult     float64
	readable bool
}

//New opens a trajectory for reading, and returns the handle and the header.
func New(name string) (*StfR, map[string]string, error) {
	S := &StfR{filename: name, natoms: -1}
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, false}
	}
	S.dec, err = zstd.NewReader(S.f)
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't read header " + err.Error(), name, []string{"New"}, false}
	}
	S.h = bufio.NewReader(S.dec)
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, Error{"Can't read header " + err.Error(), name, []string{"New"}, false}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), name, []string{"New"}, false}
			}
			if S.natoms, err = strconv.Atoi(nat[1]); err != nil {
				S.close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s': %s", nat[1], err.Error()), name, []string{"New"}, false}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			S.close()
			return nil, nil, Error{"Malformed header line: " + str, name, []string{"New"}, false}
		}
		m[kv[0]] = kv[1]
	}
	prec := DefaultPrec
	if p, ok := m["prec"]; ok {
		pr, err := strconv.Atoi(p)
		if err != nil || pr <= 0 {
			S.close()
			return nil, nil, Error{fmt.Sprintf("Invalid precision %q", p), name, []string{"New"}, false}
		}
		prec = pr
	}
	S.mult = math.Pow(10, float64(prec))
	S.readable = true
	return S, m, nil
}

//Readable returns true if Next can be called on the handle.
func (S *StfR) Readable() bool {
	return S.readable
}

//Len returns the number of atoms per frame.
func (S *StfR) Len() int {
	return S.natoms
}

func (S *StfR) close() {
	S.dec.Close()
	S.f.Close()
}

//Close closes the handle, which can't be read after this.
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.close()
	S.readable = false
}

func decode(str string, mult float64) ([3]float64, error) {
	var ret [3]float64
	s := strings.Fields(str)
	if len(s) != 3 {
		return ret, fmt.Errorf("%s: %d fields in a coordinates line: %s", WrongFormat, len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return ret, fmt.Errorf("Can't parse coordinate %d (%s): %w", i, v, err)
		}
		ret[i] = float64(f) / mult
	}
	return ret, nil
}

//Next puts the coordinates of the next frame in c, or just reads and checks the frame if c is nil.
//At the end of the trajectory, it closes the handle and returns an error that implements chem.LastFrameError.
func (S *StfR) Next(c *v3.Matrix) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, false}
	}
	if c != nil && c.NVecs() != S.natoms {
		return Error{fmt.Sprintf("%s: room for %d atoms, frames have %d", NotEnoughSpace, c.NVecs(), S.natoms), S.filename, []string{"Next"}, false}
	}
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			if err == io.EOF && i == 0 {
				S.Close()
				return newLastFrameError(S.filename, "Next")
			}
			return Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
		xyz, err := decode(strings.TrimSuffix(b, "\n"), S.mult)
		if err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c != nil {
			for j, v := range xyz {
				c.Set(i, j, v)
			}
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(s, "*") {
		return Error{"Wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	return nil
}

//Error is the error type for stf trajectories. It implements chem.CriticalError.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file associated to the error
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
	NotEnoughSpace = "Not enough space in passed blocks"
)

//lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
