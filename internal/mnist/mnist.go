// Package mnist reads the MNIST handwritten digit dataset into training samples.
package mnist

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/net"
)

const (
	imageMagic = 2051
	labelMagic = 2049

	// Classes is the number of digit classes.
	Classes = 10
)

// ErrFormat reports a malformed IDX or CSV file.
var ErrFormat = errors.New("malformed mnist data")

// Images is a decoded IDX image file. Each image is Rows*Cols bytes,
// row-major.
type Images struct {
	Rows, Cols int
	Pixels     [][]byte
}

// ReadImages decodes an IDX image file (magic 2051).
//
// Layout, big-endian:
//
//	magic       uint32
//	count       uint32
//	rows        uint32
//	cols        uint32
//	pixels      count*rows*cols unsigned bytes
func ReadImages(r io.Reader) (*Images, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if header[0] != imageMagic {
		return nil, fmt.Errorf("%w: image magic %d, want %d", ErrFormat, header[0], imageMagic)
	}
	count, rows, cols := int(header[1]), int(header[2]), int(header[3])
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrFormat, rows, cols)
	}

	images := &Images{Rows: rows, Cols: cols, Pixels: make([][]byte, 0, min(count, 1<<16))}
	for i := 0; i < count; i++ {
		px := make([]byte, rows*cols)
		if _, err := io.ReadFull(r, px); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		images.Pixels = append(images.Pixels, px)
	}
	return images, nil
}

// ReadLabels decodes an IDX label file (magic 2049).
func ReadLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read label header: %w", err)
	}
	if header[0] != labelMagic {
		return nil, fmt.Errorf("%w: label magic %d, want %d", ErrFormat, header[0], labelMagic)
	}

	// The count is untrusted; the slice grows only as bytes arrive.
	labels, err := io.ReadAll(io.LimitReader(r, int64(header[1])))
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(labels) != int(header[1]) {
		return nil, fmt.Errorf("failed to read labels: got %d of %d: %w", len(labels), header[1], io.ErrUnexpectedEOF)
	}
	return labels, nil
}

// Samples pairs images with labels. Pixels are scaled to [0, 1] and labels
// become one-hot vectors of length Classes.
func Samples(images *Images, labels []byte) ([]net.TrainingSample, error) {
	if len(images.Pixels) != len(labels) {
		return nil, fmt.Errorf("%w: %d images but %d labels", ErrFormat, len(images.Pixels), len(labels))
	}

	samples := make([]net.TrainingSample, len(labels))
	for i, label := range labels {
		if int(label) >= Classes {
			return nil, fmt.Errorf("%w: label %d of sample %d", ErrFormat, label, i)
		}
		samples[i] = net.TrainingSample{
			Input:  scale(images.Pixels[i]),
			Output: net.OneHot(int(label), Classes),
		}
	}
	return samples, nil
}

// Load reads an image file and a label file, either of which may be
// gzipped (".gz" suffix).
func Load(imagesPath, labelsPath string) ([]net.TrainingSample, error) {
	var images *Images
	err := withFile(imagesPath, func(r io.Reader) (err error) {
		images, err = ReadImages(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	var labels []byte
	err = withFile(labelsPath, func(r io.Reader) (err error) {
		labels, err = ReadLabels(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	return Samples(images, labels)
}

// LoadCSV reads Kaggle-style rows of "label,pixel0,...,pixelN".
// hasHeader skips the first line.
func LoadCSV(filename string, hasHeader bool) ([]net.TrainingSample, error) {
	var records [][]string
	err := withFile(filename, func(r io.Reader) (err error) {
		records, err = csv.NewReader(r).ReadAll()
		return err
	})
	if err != nil {
		return nil, err
	}
	if hasHeader && len(records) > 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrFormat, filename)
	}

	width := len(records[0])
	if width < 2 {
		return nil, fmt.Errorf("%w: rows need a label and at least one pixel", ErrFormat)
	}
	samples := make([]net.TrainingSample, len(records))
	for i, record := range records {
		if len(record) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrFormat, i, len(record), width)
		}
		label, err := strconv.Atoi(record[0])
		if err != nil || label < 0 || label >= Classes {
			return nil, fmt.Errorf("%w: row %d label %q", ErrFormat, i, record[0])
		}
		px := make([]byte, width-1)
		for j, field := range record[1:] {
			v, err := strconv.ParseUint(field, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %v", ErrFormat, i, j+1, err)
			}
			px[j] = byte(v)
		}
		samples[i] = net.TrainingSample{Input: scale(px), Output: net.OneHot(label, Classes)}
	}
	return samples, nil
}

func scale(px []byte) []float64 {
	x := make([]float64, len(px))
	for i, p := range px {
		x[i] = float64(p) / 255
	}
	return x
}

// withFile opens filename, gunzipping it when it ends in ".gz", and passes
// a buffered reader to fn.
func withFile(filename string, fn func(r io.Reader) error) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var r io.Reader = bufio.NewReader(file)
	if strings.HasSuffix(filename, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("failed to read gzip %s: %w", filename, err)
		}
		defer gz.Close()
		r = gz
	}

	if err := fn(r); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}
