package httpapi

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errRangeMalformed     = errors.New("malformed range header")
	errRangeUnsatisfiable = errors.New("range not satisfiable")
)

type byteRange struct {
	start, end int64
}

func (r byteRange) length() int64 { return r.end - r.start + 1 }

// parseRange interprets a single-span Range header ("bytes=start-end" or
// "bytes=start-") against an object of the given size. Suffix ranges and
// multi-span headers are not served by this gateway: suffix ranges are
// unsatisfiable, multi-span headers malformed (callers fall back to a full
// response on malformed headers, per the usual HTTP behavior).
func parseRange(spec string, size int64) (byteRange, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(spec, prefix) {
		return byteRange{}, errRangeMalformed
	}
	spec = strings.TrimSpace(strings.TrimPrefix(spec, prefix))
	if strings.Contains(spec, ",") {
		return byteRange{}, errRangeMalformed
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return byteRange{}, errRangeMalformed
	}
	if startStr == "" {
		// suffix form "bytes=-N"
		return byteRange{}, errRangeUnsatisfiable
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, errRangeMalformed
	}
	if start >= size {
		return byteRange{}, errRangeUnsatisfiable
	}

	if endStr == "" {
		// open-ended "bytes=start-"
		return byteRange{start: start, end: size - 1}, nil
	}

	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return byteRange{}, errRangeMalformed
	}
	if end >= size {
		end = size - 1
	}
	return byteRange{start: start, end: end}, nil
}
