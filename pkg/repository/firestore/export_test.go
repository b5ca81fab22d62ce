package firestore

var WrapStoreErr = wrapStoreErr
