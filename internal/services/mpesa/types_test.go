package mpesa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallbackJSON = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254708374149}
        ]
      }
    }
  }
}`

const failureCallbackJSON = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 1032,
      "ResultDesc": "Request cancelled by user."
    }
  }
}`

func TestCallbackEnvelopeSuccess(t *testing.T) {
	var envelope CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(successCallbackJSON), &envelope))

	cb := envelope.Body.StkCallback
	assert.True(t, cb.Succeeded())
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)

	receipt := cb.ReceiptNumber()
	require.NotNil(t, receipt)
	assert.Equal(t, "NLJ7RT61SV", *receipt)

	amount := cb.Amount()
	require.NotNil(t, amount)
	assert.Equal(t, 1.00, *amount)

	date := cb.TransactionDate()
	require.NotNil(t, date)
}

func TestCallbackEnvelopeFailureHasNoMetadata(t *testing.T) {
	var envelope CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(failureCallbackJSON), &envelope))

	cb := envelope.Body.StkCallback
	assert.False(t, cb.Succeeded())
	assert.Equal(t, 1032, cb.ResultCode)
	assert.Nil(t, cb.ReceiptNumber())
	assert.Nil(t, cb.Amount())
}

func TestCallbackAmountToleratesStringValues(t *testing.T) {
	cb := StkCallback{
		CallbackMetadata: &CallbackMetadata{
			Item: []CallbackItem{{Name: "Amount", Value: "250.50"}},
		},
	}
	amount := cb.Amount()
	require.NotNil(t, amount)
	assert.Equal(t, 250.50, *amount)
}
