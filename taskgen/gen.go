package taskgen

import (
	"fmt"
	"go/format"
	"strings"
	"unicode"

	"kestrel/abi"
)

// Generate emits Go source for pkg declaring the manifest's boot table:
// a ThreadRef constant per task, an endpoint index constant per
// endpoint, and a Config() function returning the checked table. The
// output is gofmt-formatted.
func Generate(m *Manifest, pkg string) ([]byte, error) {
	cfg, err := m.Config()
	if err != nil {
		return nil, err
	}
	if pkg == "" {
		pkg = "boot"
	}

	hasCaps := false
	for _, t := range cfg.Tasks {
		if len(t.Caps) > 0 {
			hasCaps = true
			break
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by kestrel gen from manifest %q; DO NOT EDIT.\n\n", m.Name)
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	if hasCaps {
		b.WriteString("import (\n\t\"kestrel/abi\"\n\t\"kestrel/kernel\"\n)\n\n")
	} else {
		b.WriteString("import \"kestrel/kernel\"\n\n")
	}

	b.WriteString("const (\n")
	for i, t := range m.Tasks {
		fmt.Fprintf(&b, "\tTask%s kernel.ThreadRef = %d\n", goName(t.Name), i)
	}
	for i, e := range m.Endpoints {
		fmt.Fprintf(&b, "\tEndpoint%s uint16 = %d\n", goName(e.Name), i)
	}
	b.WriteString(")\n\n")

	fmt.Fprintf(&b, "// Config returns the boot table of the %s system.\n", m.Name)
	b.WriteString("func Config() kernel.Config {\n\treturn kernel.Config{\n")
	fmt.Fprintf(&b, "\t\tEndpoints: %d,\n", cfg.Endpoints)
	b.WriteString("\t\tTasks: []kernel.TaskDesc{\n")
	for _, t := range cfg.Tasks {
		fmt.Fprintf(&b, "\t\t\t{\n\t\t\t\tName: %q,\n\t\t\t\tPriority: %d,\n\t\t\t\tBudget: %d,\n\t\t\t\tCooldown: %d,\n",
			t.Name, t.Priority, t.Budget, t.Cooldown)
		if t.StartRecv {
			fmt.Fprintf(&b, "\t\t\t\tStartRecv: true,\n\t\t\t\tRecvSlot: %d,\n", t.RecvSlot)
		}
		if len(t.Caps) > 0 {
			b.WriteString("\t\t\t\tCaps: []kernel.CapDesc{\n")
			for _, c := range t.Caps {
				fmt.Fprintf(&b, "\t\t\t\t\t{Slot: %d, Kind: %s, Object: %d, Rights: %s},\n",
					c.Slot, kindExpr(c.Kind), c.Object, rightsExpr(c.Rights))
			}
			b.WriteString("\t\t\t\t},\n")
		}
		b.WriteString("\t\t\t},\n")
	}
	b.WriteString("\t\t},\n\t}\n}\n")

	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("taskgen: generated source does not format: %w", err)
	}
	return src, nil
}

func kindExpr(k abi.CapKind) string {
	switch k {
	case abi.CapEndpoint:
		return "abi.CapEndpoint"
	case abi.CapThread:
		return "abi.CapThread"
	default:
		return fmt.Sprintf("abi.CapKind(%d)", k)
	}
}

func rightsExpr(r abi.Rights) string {
	var parts []string
	if r.Has(abi.RightSend) {
		parts = append(parts, "abi.RightSend")
	}
	if r.Has(abi.RightRecv) {
		parts = append(parts, "abi.RightRecv")
	}
	if r.Has(abi.RightCall) {
		parts = append(parts, "abi.RightCall")
	}
	if r.Has(abi.RightReply) {
		parts = append(parts, "abi.RightReply")
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}

// goName exports a manifest name as an identifier: "log-server" becomes
// "LogServer".
func goName(name string) string {
	var b strings.Builder
	up := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			up = true
			continue
		}
		if up {
			b.WriteRune(unicode.ToUpper(r))
			up = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
