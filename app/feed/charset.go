package feed

import (
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Normalizer transcodes raw feed payloads to UTF-8.
//
// Detection is statistical and best-effort: when the detector fails, or the
// payload already looks like UTF-8, or the detected charset cannot be decoded,
// the input passes through unchanged and downstream parsing takes its chances.
type Normalizer struct {
	detector *chardet.Detector
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		detector: chardet.NewTextDetector(),
	}
}

// Run returns the payload as UTF-8 bytes. The second return value reports
// whether a conversion actually happened; false means the input was assumed
// canonical and returned as-is.
func (n *Normalizer) Run(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return data, false
	}

	result, err := n.detector.DetectBest(data)
	if err != nil {
		return data, false
	}

	charset := result.Charset
	if strings.EqualFold(charset, "UTF-8") || strings.EqualFold(charset, "ASCII") {
		return data, false
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return data, false
	}

	converted, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return data, false
	}

	return converted, true
}
