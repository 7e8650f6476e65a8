package ast

// Short constructors for building trees in tests and tools.

func Prog(body ...Node) *Program {
	return NewProgram(body)
}

func Lp(body ...Node) *Loop {
	return NewLoop(body)
}

func Sh(delta int) *Shift {
	return NewShift(delta)
}

func Ar(amount int) *Arith {
	return NewArith(amount)
}

func Out() *Output {
	return NewOutput()
}

func In() *Input {
	return NewInput()
}
