package food

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RecordTestSuite struct {
	suite.Suite
}

func validDraft() Draft {
	return Draft{
		ID:        "42",
		Source:    SourceUSDA,
		Name:      "  Grilled Chicken Breast ",
		Calories:  Float(165),
		Protein:   Float(31),
		Carbs:     Float(0),
		Fat:       Float(3.6),
		Allergens: []string{"en:Milk", " ", "soy"},
	}
}

func (s *RecordTestSuite) TestFromDraft() {
	s.Run("ValidDraft_ShouldNormalize", func() {
		rec, err := FromDraft(validDraft())

		require.NoError(s.T(), err)
		assert.Equal(s.T(), "Grilled Chicken Breast", rec.Name)
		assert.Equal(s.T(), "grilled chicken breast", rec.NameKey())
		assert.Equal(s.T(), []string{"milk", "soy"}, rec.Allergens)
		assert.Equal(s.T(), 165.0, rec.Calories)
	})

	s.Run("ShortName_ShouldReject", func() {
		d := validDraft()
		d.Name = " ab "
		_, err := FromDraft(d)
		assert.ErrorIs(s.T(), err, ErrNameTooShort)
	})

	s.Run("MissingMacro_ShouldReject", func() {
		d := validDraft()
		d.Fat = nil
		_, err := FromDraft(d)
		assert.ErrorIs(s.T(), err, ErrMissingNutrient)
	})

	s.Run("NegativeMacro_ShouldReject", func() {
		d := validDraft()
		d.Carbs = Float(-1)
		_, err := FromDraft(d)
		assert.ErrorIs(s.T(), err, ErrNegativeNutrient)
	})

	s.Run("TooManyCalories_ShouldReject", func() {
		d := validDraft()
		d.Calories = Float(950)
		d.Fat = Float(100)
		d.Protein = Float(5)
		_, err := FromDraft(d)
		assert.ErrorIs(s.T(), err, ErrCaloriesOutOfRange)
	})

	s.Run("InconsistentCalories_ShouldReject", func() {
		d := validDraft()
		d.Calories = Float(600)
		_, err := FromDraft(d)
		assert.ErrorIs(s.T(), err, ErrInconsistentCalories)
	})

	s.Run("ZeroCalorieWater_ShouldPass", func() {
		d := Draft{Name: "Water", Calories: Float(0), Protein: Float(0), Carbs: Float(0), Fat: Float(0)}
		rec, err := FromDraft(d)
		require.NoError(s.T(), err)
		assert.Zero(s.T(), rec.Calories)
	})
}

func (s *RecordTestSuite) TestCalorieConsistencyBoundary() {
	rec := Record{Name: "Edge", Calories: 100, Protein: 0, Carbs: 37.5, Fat: 0}
	assert.True(s.T(), rec.IsCalorieConsistent(), "150 kcal vs 100 is exactly 50%")

	rec.Carbs = 38
	assert.False(s.T(), rec.IsCalorieConsistent())
}

func TestRecordTestSuite(t *testing.T) {
	suite.Run(t, new(RecordTestSuite))
}
