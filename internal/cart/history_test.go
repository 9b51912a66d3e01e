package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContacts_RecordAndRead(t *testing.T) {
	ctx := context.Background()
	s := newStorageMock()

	got, err := Contacts(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, got)

	first := ContactRecord{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello", Timestamp: checkoutTime.Truncate(time.Millisecond)}
	second := ContactRecord{Name: "Bob", Email: "bob@example.com", Subject: "Wax", Message: "Soy?", Timestamp: checkoutTime.Add(time.Minute).Truncate(time.Millisecond)}
	require.NoError(t, RecordContact(ctx, s, first))
	require.NoError(t, RecordContact(ctx, s, second))

	got, err = Contacts(ctx, s)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, "Bob", got[1].Name)
	assert.True(t, second.Timestamp.Equal(got[1].Timestamp))
}

func TestHistory_CorruptValueReadsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newStorageMock()
	s.data[KeyOrders] = []byte(`not json`)
	s.data[KeyContacts] = []byte(`null`)

	orders, err := Orders(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, orders)

	contacts, err := Contacts(ctx, s)
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestHistory_StorageErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("unavailable")

	s := newStorageMock()
	s.getErr = boom
	_, err := Orders(ctx, s)
	assert.ErrorIs(t, err, boom)

	s = newStorageMock()
	s.setErr = boom
	assert.ErrorIs(t, RecordContact(ctx, s, ContactRecord{Name: "Ada"}), boom)
}
