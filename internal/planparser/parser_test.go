package planparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBlob = `Exercise: Neck Stretches
Description: Slow side-to-side stretches.
Duration: 10 minutes
Difficulty: 2
Precautions: Stop if pain increases.

Exercise: Shoulder Rolls
Description: Roll shoulders backwards in a circle.
Duration: 5 minutes
Difficulty: 1
Precautions: Keep movements slow.`

func TestParse_ValidBlob(t *testing.T) {
	descriptors, err := Parse(validBlob)
	require.NoError(t, err)
	require.Len(t, descriptors, 2)

	assert.Equal(t, "Neck Stretches", descriptors[0].ExerciseType)
	assert.Equal(t, "Slow side-to-side stretches.", descriptors[0].Description)
	assert.Equal(t, "10 minutes", descriptors[0].Duration)
	assert.Equal(t, 2, descriptors[0].Difficulty)
	assert.Equal(t, "Stop if pain increases.", descriptors[0].Precautions)

	// Order of blocks is preserved.
	assert.Equal(t, "Shoulder Rolls", descriptors[1].ExerciseType)
	assert.Equal(t, 1, descriptors[1].Difficulty)
}

func TestParse_HandlesCRLFAndPadding(t *testing.T) {
	blob := "Exercise:  Wrist Circles \r\nDescription: Rotate wrists.\r\nDuration: 2 minutes\r\nDifficulty: 1\r\nPrecautions: None.\r\n"
	descriptors, err := Parse(blob)
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "Wrist Circles", descriptors[0].ExerciseType)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse("")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParse_ShortBlockAbortsBatch(t *testing.T) {
	blob := validBlob + "\n\nExercise: Incomplete\nDescription: Missing the rest."
	descriptors, err := Parse(blob)

	// All-or-nothing: the two valid blocks are discarded too.
	assert.Nil(t, descriptors)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Block)
}

func TestParse_WrongLineOrder(t *testing.T) {
	blob := `Description: Out of order.
Exercise: Backwards Block
Duration: 5 minutes
Difficulty: 1
Precautions: None.`
	_, err := Parse(blob)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 0, parseErr.Block)
}

func TestParse_RenamedLabel(t *testing.T) {
	blob := `Name: Wrong Label
Description: Label says Name instead of Exercise.
Duration: 5 minutes
Difficulty: 1
Precautions: None.`
	_, err := Parse(blob)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParse_NonNumericDifficultyAbortsBatch(t *testing.T) {
	blob := `Exercise: Vague Stretch
Description: Difficulty is prose.
Duration: 5 minutes
Difficulty: moderate
Precautions: None.`
	_, err := Parse(blob)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "moderate")
}

func TestParse_DifficultyIsNotRangeChecked(t *testing.T) {
	// Any integer passes; range validation is not this layer's job.
	blob := `Exercise: Extreme Stretch
Description: Difficulty out of the usual range.
Duration: 5 minutes
Difficulty: 99
Precautions: None.`
	descriptors, err := Parse(blob)
	require.NoError(t, err)
	assert.Equal(t, 99, descriptors[0].Difficulty)
}

func TestParse_ExtraLinesIgnored(t *testing.T) {
	blob := validBlob + "\nNote: a sixth line the format does not define"
	descriptors, err := Parse(blob)
	require.NoError(t, err)
	require.Len(t, descriptors, 2)
}
