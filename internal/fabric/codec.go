package fabric

import (
	"encoding/json"
	"reflect"

	"github.com/quintans/faults"
)

// Factory instantiates an empty event of the given kind for decoding.
type Factory interface {
	NewEvent(kind string) (Typer, error)
}

// Codec turns events into log bodies and back.
type Codec interface {
	Encode(evt Typer) ([]byte, error)
	Decode(kind string, body []byte) (Typer, error)
}

type JSONCodec struct {
	factory Factory
}

func NewJSONCodec(factory Factory) JSONCodec {
	return JSONCodec{factory: factory}
}

func (JSONCodec) Encode(evt Typer) ([]byte, error) {
	b, err := json.Marshal(evt)
	return b, faults.Wrap(err)
}

func (c JSONCodec) Decode(kind string, body []byte) (Typer, error) {
	evt, err := c.factory.NewEvent(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, evt); err != nil {
		return nil, faults.Errorf("decoding %s: %w", kind, err)
	}
	// factories return pointers for unmarshalling; hand out the value so
	// replayed events type-switch the same as live ones
	if rv := reflect.ValueOf(evt); rv.Kind() == reflect.Pointer {
		return rv.Elem().Interface().(Typer), nil
	}
	return evt, nil
}
