package tomldoc

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// validate runs src through a full TOML decoder. The structural parser
// only checks the shape of datetimes, so out-of-range dates and times are
// left for the decoder to reject.
func validate(src []byte) error {
	var v map[string]any
	err := toml.Unmarshal(src, &v)
	if err == nil {
		return nil
	}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, col := de.Position()
		return &ParseError{Line: row, Col: col, Msg: de.Error(), Err: ErrParse}
	}
	return &ParseError{Line: 1, Col: 1, Msg: err.Error(), Err: ErrParse}
}
