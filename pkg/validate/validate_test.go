package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ritahmida/boutique/pkg/validate"
)

type orderInput struct {
	ProductID uint    `json:"product_id" validate:"required"`
	FullName  string  `json:"full_name"  validate:"required,min=2,max=255"`
	Phone     string  `json:"phone"      validate:"required,min=8,max=20"`
	Delivery  string  `json:"delivery"   validate:"required,in=home,center"`
	Region    string  `json:"region"     validate:"nullable,max=255"`
	Price     float64 `json:"price"      validate:"gte=0"`
}

func validOrder() orderInput {
	return orderInput{
		ProductID: 3,
		FullName:  "Amira Ben Salah",
		Phone:     "21612345678",
		Delivery:  "home",
		Price:     119,
	}
}

func TestValidInputPasses(t *testing.T) {
	errs := validate.Struct(validOrder())
	assert.False(t, validate.HasErrors(errs), "unexpected errors: %v", errs)
}

func TestRequiredFields(t *testing.T) {
	errs := validate.Struct(orderInput{})
	assert.True(t, validate.HasErrors(errs))
	assert.Contains(t, errs, "product_id")
	assert.Contains(t, errs, "full_name")
	assert.Contains(t, errs, "delivery")
}

func TestInRuleKeepsCommaValuesTogether(t *testing.T) {
	in := validOrder()
	in.Delivery = "pigeon"
	errs := validate.Struct(in)
	assert.Equal(t, "The selected delivery is invalid.", errs["delivery"])

	in.Delivery = "center"
	assert.False(t, validate.HasErrors(validate.Struct(in)))
}

func TestMinMaxOnStrings(t *testing.T) {
	in := validOrder()
	in.FullName = "A"
	errs := validate.Struct(in)
	assert.Contains(t, errs, "full_name")

	in.FullName = "Amira"
	assert.False(t, validate.HasErrors(validate.Struct(in)))
}

func TestGteOnNumbers(t *testing.T) {
	in := validOrder()
	in.Price = -1
	errs := validate.Struct(in)
	assert.Contains(t, errs, "price")
}

func TestNullableSkipsRemainingRules(t *testing.T) {
	in := validOrder()
	in.Region = ""
	assert.False(t, validate.HasErrors(validate.Struct(in)))

	type mediaInput struct {
		URL string `json:"url" validate:"nullable,url"`
	}
	assert.False(t, validate.HasErrors(validate.Struct(mediaInput{})))
	assert.True(t, validate.HasErrors(validate.Struct(mediaInput{URL: "not-a-url"})))
}

func TestURLRule(t *testing.T) {
	type mediaInput struct {
		URL string `json:"url" validate:"required,url"`
	}
	assert.False(t, validate.HasErrors(validate.Struct(mediaInput{URL: "https://cdn.boutique.tn/p/1.jpg"})))
	assert.True(t, validate.HasErrors(validate.Struct(mediaInput{URL: "ftp://nope"})))
}

func TestBetweenRule(t *testing.T) {
	type ratingInput struct {
		Stars int `json:"stars" validate:"required,between=1,5"`
	}
	assert.True(t, validate.HasErrors(validate.Struct(ratingInput{Stars: 9})))
	assert.False(t, validate.HasErrors(validate.Struct(ratingInput{Stars: 4})))
}

func TestFirstFailingRuleWins(t *testing.T) {
	in := validOrder()
	in.Phone = "1"
	errs := validate.Struct(in)
	assert.Equal(t, "The phone must be at least 8 characters.", errs["phone"])
}

func TestPointerInput(t *testing.T) {
	in := validOrder()
	assert.False(t, validate.HasErrors(validate.Struct(&in)))
}
