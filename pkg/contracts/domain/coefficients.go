package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ConstKey is the JSON key holding the intercept of a coefficient set
const ConstKey = "const"

// CoefficientSet holds fitted ridge weights for one product.
// Factors and Weights are parallel slices.
type CoefficientSet struct {
	Industry  string
	Product   string
	Factors   []string
	Weights   []float64
	Intercept float64
}

// Weight returns the coefficient fitted for a factor
func (c CoefficientSet) Weight(factor string) (float64, bool) {
	for i, f := range c.Factors {
		if f == factor {
			return c.Weights[i], true
		}
	}
	return 0, false
}

// Clone returns a copy that shares no slices with c
func (c CoefficientSet) Clone() CoefficientSet {
	c.Factors = append([]string(nil), c.Factors...)
	c.Weights = append([]float64(nil), c.Weights...)
	return c
}

// MarshalJSON renders {"<factor>": <weight>, ..., "const": <intercept>},
// factors in configured order.
func (c CoefficientSet) MarshalJSON() ([]byte, error) {
	if len(c.Factors) != len(c.Weights) {
		return nil, fmt.Errorf("coefficient set has %d factors but %d weights", len(c.Factors), len(c.Weights))
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c.Factors {
		if err := writeMember(&buf, f, c.Weights[i]); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeMember(&buf, ConstKey, c.Intercept); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form back. Member order is kept.
func (c *CoefficientSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("coefficient set must be a JSON object")
	}

	c.Factors, c.Weights, c.Intercept = nil, nil, 0
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("coefficient %q: %w", key, err)
		}
		if key == ConstKey {
			c.Intercept = v
			continue
		}
		c.Factors = append(c.Factors, key)
		c.Weights = append(c.Weights, v)
	}
	_, err = dec.Token()
	return err
}

func writeMember(buf *bytes.Buffer, key string, v float64) error {
	var k bytes.Buffer
	enc := json.NewEncoder(&k)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("coefficient %q: %w", key, err)
	}
	buf.Write(bytes.TrimSuffix(k.Bytes(), []byte("\n")))
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}
