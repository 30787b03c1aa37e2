package tmwasm

type WASMResponse struct {
	Data  interface{} `json:"data,omitempty"`
	Error *WASMError  `json:"error,omitempty"`
}

type WASMError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *WASMError) Error() string {
	return e.Message
}

type RenderOptions struct {
	Fill     *string `json:"fill"`
	NoXMLTag *bool   `json:"noXMLTag"`
}

type RenderMathRequest struct {
	Expr *string        `json:"expr"`
	Opts *RenderOptions `json:"options"`
}
