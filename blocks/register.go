package blocks

import (
	"fmt"

	rfblock "radioflow/block"
	"radioflow/script"
)

// Register installs Builders for every reference block in this package
// under the class names a YAML graph description would use.
func Register(reg *script.Registry) {
	reg.Register("byte_sequence_source", func(id string, params map[string]any, handles map[string]any) (rfblock.Block, error) {
		data, err := byteSliceParam(params, "data")
		if err != nil {
			return nil, err
		}
		return NewByteSequenceSource(id, data), nil
	})
	reg.Register("float32_const_source", func(id string, params map[string]any, handles map[string]any) (rfblock.Block, error) {
		data, err := float32SliceParam(params, "data")
		if err != nil {
			return nil, err
		}
		return NewFloat32ConstSource(id, data), nil
	})
	reg.Register("scale_transform", func(id string, params map[string]any, handles map[string]any) (rfblock.Block, error) {
		factor, _ := params["factor"].(float64)
		return NewScaleTransform(id, float32(factor)), nil
	})
	reg.Register("decimate_transform", func(id string, params map[string]any, handles map[string]any) (rfblock.Block, error) {
		factor, _ := params["factor"].(int)
		return NewDecimateTransform(id, factor), nil
	})
	reg.Register("infinite_counter_source", func(id string, params map[string]any, handles map[string]any) (rfblock.Block, error) {
		batch, _ := params["batch_size"].(int)
		if batch <= 0 {
			batch = 1
		}
		var rate float64
		switch v := params["sample_rate"].(type) {
		case float64:
			rate = v
		case int:
			rate = float64(v)
		}
		return NewInfiniteCounterSource(id, batch, rate), nil
	})
	reg.Register("throttled_sink", func(id string, params map[string]any, handles map[string]any) (rfblock.Block, error) {
		sps, _ := params["samples_per_sec"].(int)
		burst, _ := params["burst"].(int)
		if burst <= 0 {
			burst = sps
		}
		return NewThrottledSink(id, sps, burst), nil
	})
}

func byteSliceParam(params map[string]any, key string) ([]byte, error) {
	raw, ok := params[key].([]any)
	if !ok {
		return nil, fmt.Errorf("blocks: missing or malformed %q param", key)
	}
	out := make([]byte, len(raw))
	for i, v := range raw {
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("blocks: %q[%d] is not an integer", key, i)
		}
		out[i] = byte(n)
	}
	return out, nil
}

func float32SliceParam(params map[string]any, key string) ([]float32, error) {
	raw, ok := params[key].([]any)
	if !ok {
		return nil, fmt.Errorf("blocks: missing or malformed %q param", key)
	}
	out := make([]float32, len(raw))
	for i, v := range raw {
		switch n := v.(type) {
		case float64:
			out[i] = float32(n)
		case int:
			out[i] = float32(n)
		default:
			return nil, fmt.Errorf("blocks: %q[%d] is not numeric", key, i)
		}
	}
	return out, nil
}
