package mpesa

import (
	"fmt"
	"strconv"
)

// STKPushResponse is the gateway's answer to a push-payment request.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether the gateway accepted the push request.
func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

// STKQueryResponse is the gateway's answer to a status query.
type STKQueryResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

// B2CResponse is the gateway's answer to a disbursement request.
type B2CResponse struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

// C2BRegisterResponse is the gateway's answer to URL registration.
type C2BRegisterResponse struct {
	OriginatorConversationID string `json:"OriginatorCoversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

// ResultCodeSuccess is the sentinel the gateway sends on a successful payment.
const ResultCodeSuccess = 0

// CallbackEnvelope is the nested notification body delivered to the
// webhook. Fields the gateway omits stay at their zero value; metadata
// items are matched by name and missing items map to nil, never an error.
type CallbackEnvelope struct {
	Body CallbackBody `json:"Body"`
}

type CallbackBody struct {
	StkCallback StkCallback `json:"stkCallback"`
}

type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem is one {Name, Value} pair; Value may be a string or a number.
type CallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// Succeeded reports whether the callback carries a successful result.
func (c *StkCallback) Succeeded() bool {
	return c.ResultCode == ResultCodeSuccess
}

// item returns the metadata value for name, or nil when absent.
func (c *StkCallback) item(name string) interface{} {
	if c.CallbackMetadata == nil {
		return nil
	}
	for _, it := range c.CallbackMetadata.Item {
		if it.Name == name {
			return it.Value
		}
	}
	return nil
}

// ReceiptNumber returns the MpesaReceiptNumber item, if present.
func (c *StkCallback) ReceiptNumber() *string {
	return c.stringItem("MpesaReceiptNumber")
}

// TransactionDate returns the gateway-side TransactionDate item, if present.
func (c *StkCallback) TransactionDate() *string {
	return c.stringItem("TransactionDate")
}

// PhoneNumber returns the PhoneNumber item, if present.
func (c *StkCallback) PhoneNumber() *string {
	return c.stringItem("PhoneNumber")
}

// Amount returns the confirmed Amount item, if present.
func (c *StkCallback) Amount() *float64 {
	v := c.item("Amount")
	if v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return &f
		}
	}
	return nil
}

func (c *StkCallback) stringItem(name string) *string {
	v := c.item(name)
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%v", v)
	return &s
}

// CallbackAck is the body the webhook must always answer with so the
// gateway stops retrying a processed notification.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
