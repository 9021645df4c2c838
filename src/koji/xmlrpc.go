package koji

import (
	"errors"
	"fmt"

	"github.com/kolo/xmlrpc"
)

// Fault is an XML-RPC fault returned by the hub.
type Fault struct {
	Code   int
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("koji fault %d: %s", f.Code, f.String)
}

// keywordArgs marks kw as koji keyword arguments. The hub treats a trailing
// struct carrying "__starstar" as **kwargs.
func keywordArgs(kw map[string]any) map[string]any {
	out := make(map[string]any, len(kw)+1)
	for k, v := range kw {
		out[k] = v
	}
	out["__starstar"] = true
	return out
}

// decodeResponse unmarshals a methodResponse body into result. A fault
// becomes *Fault; a nil result becomes ErrNotFound.
func decodeResponse(body []byte, result any) error {
	resp := xmlrpc.Response(body)
	if err := resp.Err(); err != nil {
		return asFault(err)
	}

	var raw any
	if err := resp.Unmarshal(&raw); err != nil {
		return fmt.Errorf("decoding xmlrpc response: %w", err)
	}
	if raw == nil {
		return ErrNotFound
	}
	if err := resp.Unmarshal(result); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

func asFault(err error) error {
	var fe xmlrpc.FaultError
	if errors.As(err, &fe) {
		return &Fault{Code: fe.Code, String: fe.String}
	}
	var fep *xmlrpc.FaultError
	if errors.As(err, &fep) {
		return &Fault{Code: fep.Code, String: fep.String}
	}
	return fmt.Errorf("decoding xmlrpc fault: %w", err)
}
