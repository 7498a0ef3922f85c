package wire

import (
	"errors"

	"github.com/a2lprotocol/a2l-go/pkg/a2lerr"
	"github.com/a2lprotocol/a2l-go/pkg/commitment"
	"github.com/a2lprotocol/a2l-go/pkg/curve"
	"github.com/a2lprotocol/a2l-go/pkg/zkdl"
)

// Message type strings, exact and ASCII, matching the null-terminated form
// carried in a Frame's Type field.
const (
	TypePromiseInit         = "promise_init"
	TypePromiseInitDone     = "promise_init_done"
	TypePromiseSign         = "promise_sign"
	TypePromiseSignDone     = "promise_sign_done"
	TypePromiseEnd          = "promise_end"
	TypePromiseEndDone      = "promise_end_done"
	TypePuzzleShare         = "puzzle_share"
	TypePuzzleShareDone     = "puzzle_share_done"
	TypePuzzleSolutionShare = "puzzle_solution_share"
)

var errBodyTooShort = errors.New("wire: message body shorter than its fixed layout")

const (
	p = curve.PointBytes
	s = curve.ScalarBytes
)

// PromiseInitDoneBody is the body of promise_init_done:
// P(g^alpha) || S(com.c) || P(com.r) || P(pi.a) || S(pi.z) || CT(ctx_alpha).
type PromiseInitDoneBody struct {
	GToAlpha *curve.Point
	Com      commitment.Commitment
	Proof    zkdl.Proof
	CtxAlpha []byte // raw Paillier ciphertext bytes, width = CT_BYTES
}

func (b PromiseInitDoneBody) Marshal() []byte {
	out := make([]byte, 0, p+s+p+p+s+len(b.CtxAlpha))
	out = append(out, b.GToAlpha.Bytes()...)
	out = append(out, b.Com.C.Bytes()...)
	out = append(out, b.Com.R.Bytes()...)
	out = append(out, b.Proof.A.Bytes()...)
	out = append(out, b.Proof.Z.Bytes()...)
	out = append(out, b.CtxAlpha...)
	return out
}

func UnmarshalPromiseInitDone(data []byte) (PromiseInitDoneBody, error) {
	const fixed = p + s + p + p + s
	if len(data) < fixed {
		return PromiseInitDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseInitDone", a2lerr.ErrInvalidMessage, errBodyTooShort)
	}
	off := 0
	gToAlpha, err := curve.NewPointFromBytes(data[off : off+p])
	if err != nil {
		return PromiseInitDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseInitDone", a2lerr.ErrInvalidMessage, err)
	}
	off += p
	comC, err := curve.NewScalarFromBytes(data[off : off+s])
	if err != nil {
		return PromiseInitDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseInitDone", a2lerr.ErrInvalidMessage, err)
	}
	off += s
	comR, err := curve.NewPointFromBytes(data[off : off+p])
	if err != nil {
		return PromiseInitDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseInitDone", a2lerr.ErrInvalidMessage, err)
	}
	off += p
	proofA, err := curve.NewPointFromBytes(data[off : off+p])
	if err != nil {
		return PromiseInitDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseInitDone", a2lerr.ErrInvalidMessage, err)
	}
	off += p
	proofZ, err := curve.NewScalarFromBytes(data[off : off+s])
	if err != nil {
		return PromiseInitDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseInitDone", a2lerr.ErrInvalidMessage, err)
	}
	off += s
	ctxAlpha := append([]byte(nil), data[off:]...)

	return PromiseInitDoneBody{
		GToAlpha: gToAlpha,
		Com:      commitment.Commitment{C: comC, R: comR},
		Proof:    zkdl.Proof{A: proofA, Z: proofZ},
		CtxAlpha: ctxAlpha,
	}, nil
}

// PromiseSignBody is the body of promise_sign: P(R1') || P(pi.a) || S(pi.z).
type PromiseSignBody struct {
	R1    *curve.Point
	Proof zkdl.Proof
}

func (b PromiseSignBody) Marshal() []byte {
	out := make([]byte, 0, p+p+s)
	out = append(out, b.R1.Bytes()...)
	out = append(out, b.Proof.A.Bytes()...)
	out = append(out, b.Proof.Z.Bytes()...)
	return out
}

func UnmarshalPromiseSign(data []byte) (PromiseSignBody, error) {
	const want = p + p + s
	if len(data) != want {
		return PromiseSignBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSign", a2lerr.ErrInvalidMessage, errBodyTooShort)
	}
	r1, err := curve.NewPointFromBytes(data[0:p])
	if err != nil {
		return PromiseSignBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSign", a2lerr.ErrInvalidMessage, err)
	}
	a, err := curve.NewPointFromBytes(data[p : 2*p])
	if err != nil {
		return PromiseSignBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSign", a2lerr.ErrInvalidMessage, err)
	}
	z, err := curve.NewScalarFromBytes(data[2*p : 2*p+s])
	if err != nil {
		return PromiseSignBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSign", a2lerr.ErrInvalidMessage, err)
	}
	return PromiseSignBody{R1: r1, Proof: zkdl.Proof{A: a, Z: z}}, nil
}

// PromiseSignDoneBody is the body of promise_sign_done:
// P(R2') || P(pi.a) || S(pi.z) || S(s2').
type PromiseSignDoneBody struct {
	R2    *curve.Point
	Proof zkdl.Proof
	S2    *curve.Scalar
}

func (b PromiseSignDoneBody) Marshal() []byte {
	out := make([]byte, 0, p+p+s+s)
	out = append(out, b.R2.Bytes()...)
	out = append(out, b.Proof.A.Bytes()...)
	out = append(out, b.Proof.Z.Bytes()...)
	out = append(out, b.S2.Bytes()...)
	return out
}

func UnmarshalPromiseSignDone(data []byte) (PromiseSignDoneBody, error) {
	const want = p + p + s + s
	if len(data) != want {
		return PromiseSignDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSignDone", a2lerr.ErrInvalidMessage, errBodyTooShort)
	}
	r2, err := curve.NewPointFromBytes(data[0:p])
	if err != nil {
		return PromiseSignDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSignDone", a2lerr.ErrInvalidMessage, err)
	}
	a, err := curve.NewPointFromBytes(data[p : 2*p])
	if err != nil {
		return PromiseSignDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSignDone", a2lerr.ErrInvalidMessage, err)
	}
	z, err := curve.NewScalarFromBytes(data[2*p : 2*p+s])
	if err != nil {
		return PromiseSignDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSignDone", a2lerr.ErrInvalidMessage, err)
	}
	s2, err := curve.NewScalarFromBytes(data[2*p+s : 2*p+2*s])
	if err != nil {
		return PromiseSignDoneBody{}, a2lerr.Wrap("wire.UnmarshalPromiseSignDone", a2lerr.ErrInvalidMessage, err)
	}
	return PromiseSignDoneBody{R2: r2, Proof: zkdl.Proof{A: a, Z: z}, S2: s2}, nil
}

// PromiseEndBody is the body of promise_end: S(s').
type PromiseEndBody struct {
	SPrime *curve.Scalar
}

func (b PromiseEndBody) Marshal() []byte { return b.SPrime.Bytes() }

func UnmarshalPromiseEnd(data []byte) (PromiseEndBody, error) {
	if len(data) != s {
		return PromiseEndBody{}, a2lerr.Wrap("wire.UnmarshalPromiseEnd", a2lerr.ErrInvalidMessage, errBodyTooShort)
	}
	sPrime, err := curve.NewScalarFromBytes(data)
	if err != nil {
		return PromiseEndBody{}, a2lerr.Wrap("wire.UnmarshalPromiseEnd", a2lerr.ErrInvalidMessage, err)
	}
	return PromiseEndBody{SPrime: sPrime}, nil
}

// PuzzleShareBody is the body of puzzle_share: P(g^{alpha+beta}) || CT(ct_{alpha+beta}).
type PuzzleShareBody struct {
	GToAlphaPlusBeta *curve.Point
	CtAlphaPlusBeta  []byte
}

func (b PuzzleShareBody) Marshal() []byte {
	out := make([]byte, 0, p+len(b.CtAlphaPlusBeta))
	out = append(out, b.GToAlphaPlusBeta.Bytes()...)
	out = append(out, b.CtAlphaPlusBeta...)
	return out
}

func UnmarshalPuzzleShare(data []byte) (PuzzleShareBody, error) {
	if len(data) < p {
		return PuzzleShareBody{}, a2lerr.Wrap("wire.UnmarshalPuzzleShare", a2lerr.ErrInvalidMessage, errBodyTooShort)
	}
	g, err := curve.NewPointFromBytes(data[0:p])
	if err != nil {
		return PuzzleShareBody{}, a2lerr.Wrap("wire.UnmarshalPuzzleShare", a2lerr.ErrInvalidMessage, err)
	}
	ct := append([]byte(nil), data[p:]...)
	return PuzzleShareBody{GToAlphaPlusBeta: g, CtAlphaPlusBeta: ct}, nil
}

// PuzzleSolutionShareBody is the body of puzzle_solution_share: S(alpha-hat).
type PuzzleSolutionShareBody struct {
	AlphaHat *curve.Scalar
}

func (b PuzzleSolutionShareBody) Marshal() []byte { return b.AlphaHat.Bytes() }

func UnmarshalPuzzleSolutionShare(data []byte) (PuzzleSolutionShareBody, error) {
	if len(data) != s {
		return PuzzleSolutionShareBody{}, a2lerr.Wrap("wire.UnmarshalPuzzleSolutionShare", a2lerr.ErrInvalidMessage, errBodyTooShort)
	}
	alphaHat, err := curve.NewScalarFromBytes(data)
	if err != nil {
		return PuzzleSolutionShareBody{}, a2lerr.Wrap("wire.UnmarshalPuzzleSolutionShare", a2lerr.ErrInvalidMessage, err)
	}
	return PuzzleSolutionShareBody{AlphaHat: alphaHat}, nil
}
