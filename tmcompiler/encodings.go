package tmcompiler

// encoding maps the character codes of a TeX font to Unicode.
// 0 marks codes that only make sense as part of a larger construction.
type encoding [128]rune

func (e *encoding) rune(code int32) rune {
	if e == nil {
		return rune(code)
	}
	if code < 0 || code >= int32(len(e)) {
		return rune(code)
	}
	return e[code]
}

func asciiRange(e *encoding, from, to rune) {
	for r := from; r <= to; r++ {
		e[r] = r
	}
}

var greekUpper = []rune{'Γ', 'Δ', 'Θ', 'Λ', 'Ξ', 'Π', 'Σ', 'Υ', 'Φ', 'Ψ', 'Ω'}

// Text fonts: cmr, cmbx, cmti, cmsl, cmss.
var ot1 = func() *encoding {
	e := &encoding{}
	copy(e[0x00:], greekUpper)
	copy(e[0x0B:], []rune{'ﬀ', 'ﬁ', 'ﬂ', 'ﬃ', 'ﬄ'})
	copy(e[0x10:], []rune{'ı', 'ȷ', '`', '´', 'ˇ', '˘', '¯', '˚', '¸', 'ß', 'æ', 'œ', 'ø', 'Æ', 'Œ', 'Ø'})
	asciiRange(e, 0x20, 0x7E)
	e[0x22] = '”'
	e[0x27] = '’'
	e[0x3C] = '¡'
	e[0x3E] = '¿'
	e[0x5C] = '“'
	e[0x5E] = 'ˆ'
	e[0x5F] = '˙'
	e[0x60] = '‘'
	e[0x7B] = '–'
	e[0x7C] = '—'
	e[0x7D] = '˝'
	e[0x7E] = '˜'
	e[0x7F] = '¨'
	return e
}()

// Typewriter fonts: cmtt keeps ASCII where cmr has ligatures and quotes.
var ot1tt = func() *encoding {
	e := &encoding{}
	*e = *ot1
	copy(e[0x0B:], []rune{'↑', '↓', '\'', '¡', '¿'})
	asciiRange(e, 0x20, 0x7E)
	e[0x7F] = '¨'
	return e
}()

// Math italic: cmmi.
var oml = func() *encoding {
	e := &encoding{}
	copy(e[0x00:], greekUpper)
	copy(e[0x0B:], []rune{
		'α', 'β', 'γ', 'δ', 'ϵ', 'ζ', 'η', 'θ', 'ι', 'κ', 'λ', 'μ', 'ν', 'ξ', 'π', 'ρ',
		'σ', 'τ', 'υ', 'ϕ', 'χ', 'ψ', 'ω', 'ε', 'ϑ', 'ϖ', 'ϱ', 'ς', 'φ',
	})
	copy(e[0x28:], []rune{'↼', '↽', '⇀', '⇁', 0, 0, '▹', '◃'})
	asciiRange(e, '0', '9')
	copy(e[0x3A:], []rune{'.', ',', '<', '/', '>', '⋆', '∂'})
	asciiRange(e, 'A', 'Z')
	copy(e[0x5B:], []rune{'♭', '♮', '♯', '⌣', '⌢', 'ℓ'})
	asciiRange(e, 'a', 'z')
	copy(e[0x7B:], []rune{'ı', 'ȷ', '℘', '⃗', '⁀'})
	return e
}()

// Math symbols: cmsy.
var oms = func() *encoding {
	e := &encoding{}
	copy(e[0x00:], []rune{
		'−', '⋅', '×', '∗', '÷', '⋄', '±', '∓', '⊕', '⊖', '⊗', '⊘', '⊙', '◯', '∘', '∙',
		'≍', '≡', '⊆', '⊇', '≤', '≥', '⪯', '⪰', '∼', '≈', '⊂', '⊃', '≪', '≫', '≺', '≻',
		'←', '→', '↑', '↓', '↔', '↗', '↘', '≃', '⇐', '⇒', '⇑', '⇓', '⇔', '↖', '↙', '∝',
		'′', '∞', '∈', '∋', '△', '▽', '/', 0, '∀', '∃', '¬', '∅', 'ℜ', 'ℑ', '⊤', '⊥',
		'ℵ',
	})
	asciiRange(e, 'A', 'Z')
	copy(e[0x5B:], []rune{
		'∪', '∩', '⊎', '∧', '∨',
		'⊢', '⊣', '⌊', '⌋', '⌈', '⌉', '{', '}', '⟨', '⟩', '|', '‖', '↕', '⇕', '\\', '≀',
		'√', '⨿', '∇', '∫', '⊔', '⊓', '⊑', '⊒', '§', '†', '‡', '¶', '♣', '♢', '♡', '♠',
	})
	return e
}()

// Math extension: cmex. Sized variants of one symbol share its code point.
var omx = func() *encoding {
	e := &encoding{}
	delims := []rune{'(', ')', '[', ']', '⌊', '⌋', '⌈', '⌉', '{', '}', '⟨', '⟩'}
	copy(e[0x00:], delims)
	copy(e[0x0C:], []rune{'∣', '‖', '/', '\\'})
	copy(e[0x10:], []rune{'(', ')'})
	copy(e[0x12:], []rune{'(', ')', '[', ']', '⌊', '⌋', '⌈', '⌉', '{', '}', '⟨', '⟩', '/', '\\'})
	copy(e[0x20:], delims)
	e[0x22], e[0x23] = '[', ']'
	copy(e[0x2C:], []rune{'/', '\\', '/', '\\'})
	copy(e[0x30:], []rune{
		'⎛', '⎞', '⎡', '⎤', '⎣', '⎦', '⎢', '⎥', '⎧', '⎫', '⎩', '⎭', '⎨', '⎬', '⎪', '⏐',
		'⎝', '⎠', '⎜', '⎟', '⟨', '⟩', '⨆', '⨆', '∮', '∮', '⨀', '⨀', '⨁', '⨁', '⨂', '⨂',
		'∑', '∏', '∫', '⋃', '⋂', '⨄', '⋀', '⋁', '∑', '∏', '∫', '⋃', '⋂', '⨄', '⋀', '⋁',
		'∐', '∐', 'ˆ', 'ˆ', 'ˆ', '˜', '˜', '˜', '[', ']', '⌊', '⌋', '⌈', '⌉', '{', '}',
		'√', '√', '√', '√', '⎷', '⏐', 0, '‖', '↑', '↓', 0, 0, 0, 0, '⇑', '⇓',
	})
	return e
}()
