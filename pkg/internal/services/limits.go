package services

import "github.com/spf13/viper"

type PollLimits struct {
	MaxQuestionLength int
	MaxOptionLength   int
	MaxOptions        int
	UniqueVotes       bool
}

func GetPollLimits() PollLimits {
	limits := PollLimits{
		MaxQuestionLength: viper.GetInt("polls.max_question_length"),
		MaxOptionLength:   viper.GetInt("polls.max_option_length"),
		MaxOptions:        viper.GetInt("polls.max_options"),
		UniqueVotes:       viper.GetBool("polls.unique_votes"),
	}
	if limits.MaxQuestionLength <= 0 {
		limits.MaxQuestionLength = 256
	}
	if limits.MaxOptionLength <= 0 {
		limits.MaxOptionLength = 128
	}
	if limits.MaxOptions <= 0 {
		limits.MaxOptions = 20
	}
	return limits
}
