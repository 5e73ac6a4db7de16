package commands

import (
	"fmt"
	"strconv"
	"strings"

	"groscore/internal/crypto"
	"groscore/internal/domain"
)

var methodCodes = map[string]domain.Code{
	"GET":    domain.CodeGET,
	"POST":   domain.CodePOST,
	"PUT":    domain.CodePUT,
	"DELETE": domain.CodeDELETE,
	"FETCH":  domain.CodeFETCH,
}

// parseCode accepts a method name or the "class.detail" form.
func parseCode(s string) (domain.Code, error) {
	if c, ok := methodCodes[strings.ToUpper(s)]; ok {
		return c, nil
	}
	class, detail, ok := strings.Cut(s, ".")
	if !ok {
		return 0, fmt.Errorf("code %q: want a method or class.detail", s)
	}
	cl, err := strconv.ParseUint(class, 10, 3)
	if err != nil {
		return 0, fmt.Errorf("code %q: %w", s, err)
	}
	dt, err := strconv.ParseUint(detail, 10, 5)
	if err != nil {
		return 0, fmt.Errorf("code %q: %w", s, err)
	}
	return domain.Code(cl<<5 | dt), nil
}

// printMessage writes m one field per line.
func printMessage(label string, m *domain.Message) {
	fmt.Printf("%s:\n", label)
	fmt.Printf("  code:    %s\n", m.Code)
	fmt.Printf("  token:   %s\n", crypto.Hex(m.Token))
	if m.HasSecurity {
		fmt.Printf("  oscore:  %s\n", crypto.Hex(m.Security))
	}
	fmt.Printf("  payload: %s\n", crypto.Hex(m.Payload))
}

func decodeFlag(name, v string) ([]byte, error) {
	b, err := crypto.DecodeBytes(v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return b, nil
}
