package ir

import (
	"fmt"
	"strings"
)

func (l Loop) String() string { return fmt.Sprintf("loop (%d)", len(l.Body)) }

func (s Shift) String() string { return fmt.Sprintf("shift %+d", s.Delta) }

func (a AddConst) String() string {
	return fmt.Sprintf("add_const %s += %d", cell(a.Offset), a.Amount)
}

func (a AddMult) String() string {
	return fmt.Sprintf("add_mult %s += %s * %d", cell(a.Offset), cell(a.Source), a.Factor)
}

func (z Zero) String() string   { return fmt.Sprintf("zero %s", cell(z.Offset)) }
func (o Output) String() string { return fmt.Sprintf("output %s", cell(o.Offset)) }
func (i Input) String() string  { return fmt.Sprintf("input %s", cell(i.Offset)) }

func cell(offset int) string {
	return fmt.Sprintf("[%d]", offset)
}

// Format renders body one instruction per line, loop bodies indented by two
// spaces and closed by "end".
func Format(body []Instruction) string {
	var b strings.Builder
	formatBody(&b, body, 0)
	return b.String()
}

func (p *Program) String() string {
	if p == nil {
		return ""
	}
	return Format(p.Body)
}

func formatBody(b *strings.Builder, body []Instruction, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, inst := range body {
		if loop, ok := inst.(Loop); ok {
			b.WriteString(indent)
			b.WriteString("loop\n")
			formatBody(b, loop.Body, depth+1)
			b.WriteString(indent)
			b.WriteString("end\n")
			continue
		}
		b.WriteString(indent)
		fmt.Fprint(b, inst)
		b.WriteByte('\n')
	}
}
