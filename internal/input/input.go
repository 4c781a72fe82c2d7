// Package input reads dislocation structure, grain orientation and
// tessellation files. Lines starting with # and blank lines are skipped
// everywhere, so data files can carry comments.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ddsim/dd2d/internal/crystal"
	"github.com/ddsim/dd2d/internal/defect"
	"github.com/ddsim/dd2d/internal/tensor"
)

var (
	ErrTruncatedFile = errors.New("input: unexpected end of file")
	ErrBadRecord     = errors.New("input: malformed record")
)

type lineReader struct {
	scanner *bufio.Scanner
	lineNum int
}

func newLineReader(f *os.File) *lineReader {
	return &lineReader{scanner: bufio.NewScanner(f)}
}

// next returns the next non-blank, non-comment line.
func (r *lineReader) next() (string, error) {
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", ErrTruncatedFile
}

func (r *lineReader) fields(want int) ([]float64, error) {
	line, err := r.next()
	if err != nil {
		return nil, err
	}
	parts := strings.Fields(line)
	if len(parts) < want {
		return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrBadRecord, r.lineNum, len(parts), want)
	}
	vals := make([]float64, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d field %d: %v", ErrBadRecord, r.lineNum, i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func (r *lineReader) count() (int, error) {
	line, err := r.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.Fields(line)[0])
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %v", ErrBadRecord, r.lineNum, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: line %d: negative count", ErrBadRecord, r.lineNum)
	}
	return n, nil
}

func vec(vals []float64) tensor.Vector3 {
	return tensor.Vector3{X: vals[0], Y: vals[1], Z: vals[2]}
}

// ReadSlipPlane reads a slip plane structure file. The layout is two
// extremity lines, a normal line, a position line, a dislocation count
// followed by that many dislocation records, then a source count
// followed by that many source records. Dislocation records hold
// position, Burgers vector, line vector, Burgers magnitude and a
// mobility flag; source records replace the flag with the critical
// shear stress and the nucleation delay in iterations.
func ReadSlipPlane(path string) (*crystal.SlipPlane, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := newLineReader(f)

	e0, err := r.fields(3)
	if err != nil {
		return nil, err
	}
	e1, err := r.fields(3)
	if err != nil {
		return nil, err
	}
	normal, err := r.fields(3)
	if err != nil {
		return nil, err
	}
	pos, err := r.fields(3)
	if err != nil {
		return nil, err
	}

	sp := crystal.NewSlipPlane(vec(e0), vec(e1), vec(normal), vec(pos))

	nDis, err := r.count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < nDis; i++ {
		vals, err := r.fields(11)
		if err != nil {
			return nil, err
		}
		d, err := defect.NewDislocation(
			vec(vals[3:6]), vec(vals[6:9]), vec(vals[0:3]),
			vals[9], vals[10] != 0)
		if err != nil {
			return nil, fmt.Errorf("input: dislocation %d: %w", i, err)
		}
		sp.InsertDislocation(d)
	}

	nSrc, err := r.count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < nSrc; i++ {
		vals, err := r.fields(12)
		if err != nil {
			return nil, err
		}
		src, err := defect.NewDislocationSource(
			vec(vals[3:6]), vec(vals[6:9]), vec(vals[0:3]),
			vals[9], vals[10], int(vals[11]))
		if err != nil {
			return nil, fmt.Errorf("input: source %d: %w", i, err)
		}
		sp.InsertSource(src)
	}

	return sp, nil
}

// ReadOrientations reads one orientation vector per line, three
// components each, in grain order.
func ReadOrientations(path string) ([]tensor.Vector3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := newLineReader(f)
	n, err := r.count()
	if err != nil {
		return nil, err
	}
	out := make([]tensor.Vector3, 0, n)
	for i := 0; i < n; i++ {
		vals, err := r.fields(3)
		if err != nil {
			return nil, err
		}
		out = append(out, vec(vals))
	}
	return out, nil
}

// ReadTessellation reads grain boundary polygons: a grain count, then
// for each grain a vertex count followed by that many vertex lines.
func ReadTessellation(path string) ([][]tensor.Vector3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := newLineReader(f)
	nGrains, err := r.count()
	if err != nil {
		return nil, err
	}
	out := make([][]tensor.Vector3, 0, nGrains)
	for g := 0; g < nGrains; g++ {
		nVerts, err := r.count()
		if err != nil {
			return nil, err
		}
		poly := make([]tensor.Vector3, 0, nVerts)
		for v := 0; v < nVerts; v++ {
			vals, err := r.fields(3)
			if err != nil {
				return nil, err
			}
			poly = append(poly, vec(vals))
		}
		out = append(out, poly)
	}
	return out, nil
}
