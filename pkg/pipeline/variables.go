package pipeline

import (
	"fmt"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// DecodeVariables decodes the session variables into out (a pointer to a struct
// with mapstructure tags). Input is weakly typed, so numbers that went through a
// JSON round trip or arrived as strings still decode into int fields.
func DecodeVariables(sc *domain.SessionContext, out any) error {
	return decode(sc.Variables, out)
}

// DecodePayload decodes the command payload into out.
func DecodePayload(cmd domain.Command, out any) error {
	return decode(cmd.Payload, out)
}

func decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode variables: %w", err)
	}
	return nil
}
