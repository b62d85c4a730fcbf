package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
)

func TestIsTicker(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"AAPL", true},
		{" aapl ", true},
		{"BRK.B", true},
		{"RELIANCE.NS", true},
		{"^GSPC", true},
		{"EURUSD=X", true},
		{"", false},
		{"   ", false},
		{"AA PL", false},
		{".AAPL", false},
		{"<script>", false},
		{"ABCDEFGHIJKLMNOPQRSTUV", false},
	}
	for _, tt := range tests {
		if got := IsTicker(tt.in); got != tt.want {
			t.Errorf("IsTicker(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type holdingInput struct {
	Symbol   string           `binding:"required,ticker"`
	Quantity decimal.Decimal  `binding:"required,gt=0"`
	Price    *decimal.Decimal `binding:"omitempty,gt=0"`
}

func TestRegisteredRules(t *testing.T) {
	Register()

	neg := decimal.NewFromInt(-1)
	pos := decimal.NewFromInt(2)
	tests := []struct {
		name    string
		in      holdingInput
		wantErr bool
	}{
		{"valid", holdingInput{Symbol: "AAPL", Quantity: decimal.NewFromInt(1)}, false},
		{"valid_with_price", holdingInput{Symbol: "AAPL", Quantity: decimal.NewFromInt(1), Price: &pos}, false},
		{"bad_symbol", holdingInput{Symbol: "A A", Quantity: decimal.NewFromInt(1)}, true},
		{"zero_quantity", holdingInput{Symbol: "AAPL"}, true},
		{"negative_quantity", holdingInput{Symbol: "AAPL", Quantity: neg}, true},
		{"negative_price", holdingInput{Symbol: "AAPL", Quantity: decimal.NewFromInt(1), Price: &neg}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFailed(t *testing.T) {
	type signup struct {
		Email string `binding:"required,email"`
	}

	err := binding.Validator.ValidateStruct(&signup{Email: "not-an-email"})
	if !Failed(err, "Email", "email") {
		t.Errorf("expected email failure, got %v", err)
	}
	if Failed(err, "Email", "required") {
		t.Error("required should not have failed")
	}
	if Failed(nil, "Email", "email") {
		t.Error("nil error reported as failure")
	}
}
