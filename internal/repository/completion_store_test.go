package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedLessonsRoundTrip(t *testing.T) {
	cases := [][]string{
		nil,
		{},
		{"budgeting-basics"},
		{"budgeting-basics", "saving-smart", "credit-101"},
	}
	for _, ids := range cases {
		data, err := EncodeCompletedLessons(ids)
		require.NoError(t, err)

		decoded, err := DecodeCompletedLessons(data)
		require.NoError(t, err)

		if len(ids) == 0 {
			assert.Empty(t, decoded)
		} else {
			assert.Equal(t, ids, decoded)
		}
		// 解码结果永远不是nil，调用方可以直接append
		assert.NotNil(t, decoded)
	}
}

func TestDecodeCompletedLessonsCorruptData(t *testing.T) {
	_, err := DecodeCompletedLessons([]byte(`{"not":"a list"}`))
	assert.Error(t, err)

	_, err = DecodeCompletedLessons([]byte(`[1,2,3]`))
	assert.Error(t, err)

	_, err = DecodeCompletedLessons([]byte(`garbage`))
	assert.Error(t, err)
}

func TestDecodeCompletedLessonsNullIsEmpty(t *testing.T) {
	decoded, err := DecodeCompletedLessons([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}

func TestAttemptKeyIncludesUserAndLesson(t *testing.T) {
	assert.Equal(t, "quiz_attempt:7:budgeting-basics", attemptKey(7, "budgeting-basics"))
	assert.Equal(t, "completed_lessons:7", completedLessonsKey(7))
}
