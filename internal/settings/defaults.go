package settings

var imageFiles = []any{".png", ".jpg", ".jpeg", ".gif", ".bmp"}

var videoFiles = []any{
	".flv", ".swf", ".mkv", ".avi", ".rm", ".rmvb", ".mpeg", ".mpg",
	".ogg", ".ogv", ".mov", ".wmv", ".mp4", ".webm", ".mp3", ".wav", ".mid",
}

var attachmentFiles = []any{
	".png", ".jpg", ".jpeg", ".gif", ".bmp",
	".flv", ".swf", ".mkv", ".avi", ".rm", ".rmvb", ".mpeg", ".mpg",
	".ogg", ".ogv", ".mov", ".wmv", ".mp4", ".webm", ".mp3", ".wav", ".mid",
	".rar", ".zip", ".tar", ".gz", ".7z", ".bz2", ".cab", ".iso",
	".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".pdf", ".txt", ".md", ".xml",
}

// Defaults returns a fresh copy of the editor's standard controller settings.
func Defaults() Settings {
	return Settings{
		// image upload
		"imageActionName":     "uploadimage",
		"imageFieldName":      "upfile",
		"imageMaxSize":        2048000,
		"imageAllowFiles":     clone(imageFiles),
		"imageCompressEnable": true,
		"imageCompressBorder": 1600,
		"imageInsertAlign":    "none",
		"imageUrlPrefix":      "",
		"imagePathFormat":     "/upload/image/{yyyy}{mm}{dd}/{time}{rand:6}",

		// scrawl
		"scrawlActionName":  "uploadscrawl",
		"scrawlFieldName":   "upfile",
		"scrawlPathFormat":  "/upload/image/{yyyy}{mm}{dd}/{time}{rand:6}",
		"scrawlMaxSize":     2048000,
		"scrawlUrlPrefix":   "",
		"scrawlInsertAlign": "none",

		// screenshot
		"snapscreenActionName":  "uploadimage",
		"snapscreenPathFormat":  "/upload/image/{yyyy}{mm}{dd}/{time}{rand:6}",
		"snapscreenUrlPrefix":   "",
		"snapscreenInsertAlign": "none",

		// remote image catcher
		"catcherLocalDomain": []any{"127.0.0.1", "localhost", "img.baidu.com"},
		"catcherActionName":  "catchimage",
		"catcherFieldName":   "source",
		"catcherPathFormat":  "/upload/image/{yyyy}{mm}{dd}/{time}{rand:6}",
		"catcherUrlPrefix":   "",
		"catcherMaxSize":     2048000,
		"catcherAllowFiles":  clone(imageFiles),

		// video upload
		"videoActionName": "uploadvideo",
		"videoFieldName":  "upfile",
		"videoPathFormat": "/upload/video/{yyyy}{mm}{dd}/{time}{rand:6}",
		"videoUrlPrefix":  "",
		"videoMaxSize":    102400000,
		"videoAllowFiles": clone(videoFiles),

		// file upload
		"fileActionName": "uploadfile",
		"fileFieldName":  "upfile",
		"filePathFormat": "/upload/file/{yyyy}{mm}{dd}/{time}{rand:6}",
		"fileUrlPrefix":  "",
		"fileMaxSize":    51200000,
		"fileAllowFiles": clone(attachmentFiles),

		// image manager
		"imageManagerActionName":  "listimage",
		"imageManagerListPath":    "/upload/image/",
		"imageManagerListSize":    20,
		"imageManagerUrlPrefix":   "",
		"imageManagerInsertAlign": "none",
		"imageManagerAllowFiles":  clone(imageFiles),

		// file manager
		"fileManagerActionName": "listfile",
		"fileManagerListPath":   "/upload/file/",
		"fileManagerUrlPrefix":  "",
		"fileManagerListSize":   20,
		"fileManagerAllowFiles": clone(attachmentFiles),
	}
}

func clone(v []any) []any {
	return append([]any(nil), v...)
}
