package models

import "fmt"

type OptionType string

func (o OptionType) Validate() error {
	if o != Call && o != Put {
		return fmt.Errorf("OptionType: Validate: invalid option type: %s", o)
	}

	return nil
}

// Sign is +1 for calls and -1 for puts, so that max(0, sign*(S-K)) is the intrinsic value.
func (o OptionType) Sign() float64 {
	if o == Call {
		return 1
	}

	return -1
}

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

type ExerciseStyle string

func (s ExerciseStyle) Validate() error {
	if s != European && s != American {
		return fmt.Errorf("ExerciseStyle: Validate: invalid exercise style: %s", s)
	}

	return nil
}

const (
	European ExerciseStyle = "european"
	American ExerciseStyle = "american"
)
