package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey возвращается для клавиш, не связанных с действием
var ErrUnknownKey = errors.New("неизвестная клавиша")

// Key – действие, связанное с клавишей
type Key uint8

const (
	KeyForward Key = iota + 1
	KeyBackward
	KeyLeft
	KeyRight
	KeyJump
	KeyReset
)

var keyNames = map[Key]string{
	KeyForward:  "KeyW",
	KeyBackward: "KeyS",
	KeyLeft:     "KeyA",
	KeyRight:    "KeyD",
	KeyJump:     "Space",
	KeyReset:    "KeyR",
}

// String возвращает код клавиши
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// ParseKey разбирает код клавиши ("KeyW", "w", "Space", ...)
func ParseKey(code string) (Key, error) {
	switch strings.ToLower(strings.TrimPrefix(code, "Key")) {
	case "w":
		return KeyForward, nil
	case "s":
		return KeyBackward, nil
	case "a":
		return KeyLeft, nil
	case "d":
		return KeyRight, nil
	case "space", " ":
		return KeyJump, nil
	case "r":
		return KeyReset, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, code)
}

// HandleKey применяет нажатие или отпускание клавиши
func (p *Player) HandleKey(key Key, pressed bool) {
	if !pressed {
		switch key {
		case KeyForward, KeyBackward:
			p.input[2] = 0
		case KeyLeft, KeyRight:
			p.input[0] = 0
		}
		return
	}

	switch key {
	case KeyForward:
		p.input[2] = p.cfg.MaxSpeed
	case KeyBackward:
		p.input[2] = -p.cfg.MaxSpeed
	case KeyLeft:
		p.input[0] = -p.cfg.MaxSpeed
	case KeyRight:
		p.input[0] = p.cfg.MaxSpeed
	case KeyJump:
		p.Jump()
	case KeyReset:
		p.Reset()
	}
}
